package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	t.Run("creates logger with default options", func(t *testing.T) {
		if New() == nil {
			t.Fatal("expected logger, got nil")
		}
	})

	t.Run("respects log level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(
			WithOutput(&buf),
			WithLevel(slog.LevelWarn),
		)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
			t.Errorf("records below warn should be dropped, got: %s", output)
		}
		if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
			t.Errorf("warn and error records should appear, got: %s", output)
		}
	})
}

func TestNop(t *testing.T) {
	logger := Nop()
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	logger.With("root", "/tmp").WithGroup("tree").Info("test")
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithDebug())

	logger.With("root", "/proj").Debug("dirty scan", "paths", 3)

	output := buf.String()
	if !strings.Contains(output, "root=/proj") {
		t.Errorf("expected output to contain 'root=/proj', got: %s", output)
	}
	if !strings.Contains(output, "paths=3") {
		t.Errorf("expected output to contain 'paths=3', got: %s", output)
	}
}

func TestWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithFormat(FormatJSON))

	logger.WithGroup("tree").Info("commit changed", "from", "abc1234", "to", "def5678")

	if !strings.Contains(buf.String(), `"tree":{`) {
		t.Errorf("expected output to contain tree group, got: %s", buf.String())
	}
}

func TestContext(t *testing.T) {
	t.Run("WithContext and FromContext", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithContext(context.Background(), New(WithOutput(&buf)))

		FromContext(ctx).Info("test message")

		if !strings.Contains(buf.String(), "test message") {
			t.Error("expected message from context logger")
		}
	})

	t.Run("FromContext returns Nop when no logger", func(t *testing.T) {
		FromContext(context.Background()).Info("test message")
	})
}

func TestFormats(t *testing.T) {
	var buf bytes.Buffer
	New(WithOutput(&buf), WithFormat(FormatJSON)).Info("test message", "key", "value")
	if !strings.Contains(buf.String(), `"msg":"test message"`) || !strings.Contains(buf.String(), `"key":"value"`) {
		t.Errorf("expected JSON record, got: %s", buf.String())
	}

	buf.Reset()
	New(WithOutput(&buf), WithFormat(FormatText)).Info("test message", "key", "value")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected text record, got: %s", buf.String())
	}
}

func TestQuiet(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithOutput(&buf), WithQuiet())

	logger.Info("info message")
	logger.Warn("warn message")

	if strings.Contains(buf.String(), "info message") {
		t.Error("WithQuiet should suppress info messages")
	}
	if !strings.Contains(buf.String(), "warn message") {
		t.Error("WithQuiet should allow warn messages")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if got := ParseFormat("json"); got != FormatJSON {
		t.Errorf("ParseFormat(json) = %q, want %q", got, FormatJSON)
	}
	if got := ParseFormat("logfmt"); got != FormatText {
		t.Errorf("ParseFormat(logfmt) = %q, want %q", got, FormatText)
	}
}
