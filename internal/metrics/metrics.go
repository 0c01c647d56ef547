package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ReasonUnsupportedType = "unsupported_type"
	ReasonArityMismatch   = "arity_mismatch"
	ReasonStorage         = "storage"
	ReasonOther           = "other"
)

// Recorder holds the tracker collectors. Use New to register them.
type Recorder struct {
	reports  *prometheus.CounterVec
	errors   *prometheus.CounterVec
	lastSync prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftracker",
			Name:      "reports_total",
			Help:      "Number of workout reports produced, by training type.",
		}, []string{"training_type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ftracker",
			Name:      "package_errors_total",
			Help:      "Number of sensor packages that failed, by reason.",
		}, []string{"reason"}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftracker",
			Name:      "last_sync_timestamp_seconds",
			Help:      "Unix timestamp of the most recent completed inbox sync.",
		}),
	}
	reg.MustRegister(r.reports, r.errors, r.lastSync)
	return r
}

func (r *Recorder) RecordReport(trainingType string) {
	if r == nil {
		return
	}
	r.reports.WithLabelValues(trainingType).Inc()
}

func (r *Recorder) RecordError(reason string) {
	if r == nil {
		return
	}
	r.errors.WithLabelValues(reason).Inc()
}

func (r *Recorder) RecordSync(ts time.Time) {
	if r == nil || ts.IsZero() {
		return
	}
	r.lastSync.Set(float64(ts.Unix()))
}
