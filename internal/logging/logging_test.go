package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", &buf)
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("hidden")
	Component(logger, "process").Warn("shown", "file", "a.jpg")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record leaked through a warn logger: %q", out)
	}
	if !strings.Contains(out, "component=process") || !strings.Contains(out, "file=a.jpg") {
		t.Errorf("missing attributes in %q", out)
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("chatty", &bytes.Buffer{}); err == nil {
		t.Error("expected an error for an unknown level")
	}
}
