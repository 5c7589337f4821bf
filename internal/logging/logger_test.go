package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Out: &buf})
	t.Cleanup(func() { Init(Options{}) })

	log.Debug().Str("image", "a.jpg").Msg("hello")

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	if doc["message"] != "hello" || doc["image"] != "a.jpg" {
		t.Errorf("unexpected log line: %s", buf.String())
	}
}

func TestInit_ConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Out: &buf})
	t.Cleanup(func() { Init(Options{}) })

	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line logged at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestStartupLogger(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Format: "json", Out: &buf})
	t.Cleanup(func() { Init(Options{}) })

	NewStartupLogger("slideshow").
		Version("1.2.3").
		Tool("ffmpeg", "/usr/bin/ffmpeg").
		Feature("shuffle", true).
		Config("geometry", "1920x1080").
		Log()

	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("output is not JSON: %v: %s", err, buf.String())
	}
	app, _ := doc["app"].(map[string]any)
	if app["version"] != "1.2.3" || app["name"] != "slideshow" {
		t.Errorf("app = %v", app)
	}
	if tools, _ := doc["tools"].(map[string]any); tools["ffmpeg"] != "/usr/bin/ffmpeg" {
		t.Errorf("tools = %v", doc["tools"])
	}
	if features, _ := doc["features"].(map[string]any); features["shuffle"] != true {
		t.Errorf("features = %v", doc["features"])
	}
}
