package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("warn", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter failed: %v", err)
	}

	log.Named("registry").Info("hidden")
	log.Named("registry").Warn("probe failed", zap.String("observer", "Redis"))
	Flush(log)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info line should be filtered at warn level: %q", out)
	}
	for _, want := range []string{"WARN", "registry", "probe failed", "Redis"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got %q", want, out)
		}
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}
