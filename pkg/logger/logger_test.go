package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf})

	log.Info().Msg("hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message emitted at warn level")
	}
	if !strings.Contains(out, "visible") {
		t.Error("warn message missing")
	}
}

func TestNewDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "nonsense", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "visible") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Error().Msg("nothing")
	if log.GetLevel().String() != "disabled" {
		t.Errorf("level = %s", log.GetLevel())
	}
}
