package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerPrefixes(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf)

	l.Info("console online")
	l.Warnf("risk at %d", 7)
	l.Errorf("bad node %q", "lab_void")
	l.Event("SPREAD", "SYSTEM_INFECTION", "crew:garry")

	out := buf.String()
	for _, want := range []string{
		"[OUTPOST-INFO] ",
		"console online",
		"[OUTPOST-WARN] ",
		"risk at 7",
		"[OUTPOST-ERROR] ",
		`bad node "lab_void"`,
		"[EVENT:SPREAD] Actor:SYSTEM_INFECTION | crew:garry",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got:\n%s", want, out)
		}
	}
}
