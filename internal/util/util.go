package util

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	constants "github.com/CodeAndHammer/parludo/internal/constants"
)

var logger = logrus.New()

// ConfigureLogger applies the configured level and output format to the
// shared logger. Unknown levels fall back to info.
func ConfigureLogger(level, format string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	if strings.EqualFold(format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func Logger() *logrus.Logger {
	return logger
}

// RequestLogger returns an entry tagged with the request id stored in ctx,
// if any.
func RequestLogger(ctx context.Context) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if ctx == nil {
		return entry
	}
	if reqID, ok := ctx.Value(constants.RequestIDKey).(string); ok && reqID != "" {
		entry = entry.WithField("request_id", reqID)
	}
	return entry
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		LogWarn("Error checking directory existence: %v", err)
		return false
	}
	return info.IsDir()
}

func FormatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

// FormatClock renders whole seconds as m:ss for the board timer.
func FormatClock(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func LogInfo(format string, v ...any) {
	logger.Infof(format, v...)
}

func LogWarn(format string, v ...any) {
	logger.Warnf(format, v...)
}

func LogError(format string, v ...any) {
	logger.Errorf(format, v...)
}

func LogFatal(format string, v ...any) {
	logger.Fatalf(format, v...)
}
