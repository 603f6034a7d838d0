package util

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
)

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	if !DirExists(dir) {
		t.Errorf("Expected DirExists to return true for existing dir")
	}
	if DirExists(dir + "-notfound") {
		t.Errorf("Expected DirExists to return false for non-existent dir")
	}
}

func TestFormatUptime(t *testing.T) {
	cases := []struct {
		dur      time.Duration
		expected string
	}{
		{time.Second * 5, "5 seconds"},
		{time.Second * 65, "1 minute, 5 seconds"},
		{time.Second * 3665, "1 hour, 1 minute, 5 seconds"},
		{time.Second * 3600, "1 hour, 0 minutes, 0 seconds"},
		{time.Second * 60, "1 minute, 0 seconds"},
		{time.Second * 1, "1 second"},
	}
	for _, c := range cases {
		got := FormatUptime(c.dur)
		if got != c.expected {
			t.Errorf("FormatUptime(%v) = %q, want %q", c.dur, got, c.expected)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int]string{
		0:   "0:00",
		9:   "0:09",
		61:  "1:01",
		600: "10:00",
		-4:  "0:00",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Errorf("FormatClock(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestPlural(t *testing.T) {
	if plural(1) != "" {
		t.Errorf("plural(1) = %q, want \"\"", plural(1))
	}
	if plural(2) != "s" {
		t.Errorf("plural(2) = %q, want \"s\"", plural(2))
	}
	if plural(0) != "s" {
		t.Errorf("plural(0) = %q, want \"s\"", plural(0))
	}
}

func TestRequestLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Out
	logger.SetOutput(&buf)
	defer logger.SetOutput(prev)
	ConfigureLogger("info", "json")

	ctx := context.WithValue(context.Background(), constants.RequestIDKey, "req-42")
	RequestLogger(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("expected request_id field in %q", buf.String())
	}
}

func TestConfigureLoggerFallsBackToInfo(t *testing.T) {
	ConfigureLogger("nonsense", "text")
	if got := logger.GetLevel().String(); got != "info" {
		t.Errorf("level = %q, want info", got)
	}
}

func TestLogWrappersUseLevels(t *testing.T) {
	var buf bytes.Buffer
	prev := logger.Out
	logger.SetOutput(&buf)
	defer logger.SetOutput(prev)
	ConfigureLogger("warn", "json")
	defer ConfigureLogger("info", "text")

	LogInfo("dropped %d", 1)
	LogWarn("kept %d", 2)
	LogError("kept %d", 3)

	out := buf.String()
	if strings.Contains(out, "dropped 1") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, `"level":"warning","msg":"kept 2"`) {
		t.Errorf("missing warning line in %q", out)
	}
	if !strings.Contains(out, `"level":"error","msg":"kept 3"`) {
		t.Errorf("missing error line in %q", out)
	}
}
