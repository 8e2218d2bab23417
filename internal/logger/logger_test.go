package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFromVerbosity(t *testing.T) {
	var tests = []struct {
		v     int
		level Level
	}{
		{-1, LevelWarn},
		{0, LevelWarn},
		{1, LevelInfo},
		{2, LevelDebug},
		{5, LevelDebug},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.v); got != tt.level {
			t.Errorf("\nLevelFromVerbosity(%d) = %v, wanted %v", tt.v, got, tt.level)
		}
	}
}

func TestLevels(t *testing.T) {
	var tests = []struct {
		name   string
		level  Level
		labels []string
		hidden []string
	}{
		{"warn", LevelWarn, []string{errorLabel, warnLabel}, []string{infoLabel, debugLabel}},
		{"info", LevelInfo, []string{errorLabel, warnLabel, infoLabel}, []string{debugLabel}},
		{"debug", LevelDebug, []string{errorLabel, warnLabel, infoLabel, debugLabel}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&buf, tt.level)
			l.Error("e %d", 1)
			l.Warn("w %d", 2)
			l.Info("i %d", 3)
			l.Debug("d %d", 4)

			out := buf.String()
			for _, label := range tt.labels {
				if !strings.Contains(out, label) {
					t.Errorf("\nexpected %q in output %q", label, out)
				}
			}
			for _, label := range tt.hidden {
				if strings.Contains(out, label) {
					t.Errorf("\ndid not expect %q in output %q", label, out)
				}
			}
		})
	}
}

func TestFatalExits(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	code := -1
	l.exit = func(c int) { code = c }

	l.Fatal("boom: %s", "db")

	if code != 1 {
		t.Errorf("\ngot exit code %d, wanted 1", code)
	}
	if !strings.Contains(buf.String(), fatalLabel+"boom: db") {
		t.Errorf("\nunexpected output %q", buf.String())
	}
}
