package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstent/ftracker/internal/database"
)

const demoOutput = "Тип тренировки: Swimming\n" +
	"Длительность: 1.000 ч\n" +
	"Дистанция: 0.468 км\n" +
	"Средняя скорость: 0.017 км/ч\n" +
	"Потрачено калорий: 4.467\n" +
	"--------------------------------------\n" +
	"Тип тренировки: Running\n" +
	"Длительность: 1.000 ч\n" +
	"Дистанция: 9.750 км\n" +
	"Средняя скорость: 9.750 км/ч\n" +
	"Потрачено калорий: 699.750\n" +
	"--------------------------------------\n" +
	"Тип тренировки: SportsWalking\n" +
	"Длительность: 1.000 ч\n" +
	"Дистанция: 5.850 км\n" +
	"Средняя скорость: 5.850 км/ч\n" +
	"Потрачено калорий: 157.500\n" +
	"--------------------------------------\n"

// testEnv points every path at a temp dir and returns the -env flag pair for
// an env file that does not exist.
func testEnv(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("DB_PATH", filepath.Join(dir, "history", "ftracker.db"))
	t.Setenv("LOG_LEVEL", "error")
	return dir, []string{"-env", filepath.Join(dir, "absent.env")}
}

func TestRunDemo(t *testing.T) {
	_, flags := testEnv(t)

	for _, args := range [][]string{flags, append(flags, "demo")} {
		var stdout, stderr bytes.Buffer
		code := run(args, &stdout, &stderr)

		assert.Equal(t, 0, code, stderr.String())
		assert.Equal(t, demoOutput, stdout.String())
	}
}

func TestRunReport(t *testing.T) {
	dir, flags := testEnv(t)

	week := filepath.Join(dir, "week.yaml")
	require.NoError(t, os.WriteFile(week, []byte(`packages:
  - type: SWM
    data: [720, 1, 80, 25, 40]
  - type: RUN
    data: [15000, 1, 75]
  - type: WLK
    data: [9000, 1, 75, 180]
`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(append(flags, "report", week), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, demoOutput, stdout.String())

	db, err := database.NewSQLiteDB(filepath.Join(dir, "history", "ftracker.db"))
	require.NoError(t, err)
	defer db.Close()

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func TestRunReportFailures(t *testing.T) {
	dir, flags := testEnv(t)

	mixed := filepath.Join(dir, "mixed.yaml")
	require.NoError(t, os.WriteFile(mixed, []byte(`packages:
  - type: XYZ
    data: [1, 2, 3]
  - type: RUN
    data: [15000, 1, 75]
`), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(append(flags, "report", mixed, filepath.Join(dir, "missing.yaml")), &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Equal(t, 1, strings.Count(stdout.String(), "Тип тренировки:"))
	assert.Contains(t, stdout.String(), "Тип тренировки: Running")
}

func TestRunUsageErrors(t *testing.T) {
	_, flags := testEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown command", append(flags, "jump"), `unknown command "jump"`},
		{"report without files", append(flags, "report"), "report needs at least one file"},
		{"bad flag", []string{"-nope"}, "flag provided but not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, 2, code)
			assert.Contains(t, stderr.String(), tt.want)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRunInvalidLogLevel(t *testing.T) {
	_, flags := testEnv(t)
	t.Setenv("LOG_LEVEL", "chatty")

	var stdout, stderr bytes.Buffer
	code := run(flags, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "invalid LOG_LEVEL")
}
