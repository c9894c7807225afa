package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestSetupJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(LogConfig{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log := WithComponent("sequence")
	log.Debug().Str("sequence", "orders").Msg("allocated")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a json line, got %q: %v", buf.String(), err)
	}
	if entry["component"] != "sequence" || entry["message"] != "allocated" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	if err := Setup(LogConfig{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
