// Package monitoring owns the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Logf is the package-level diagnostic logger. It defaults to the shared
// logrus logger at info level but may be replaced by SetLogger. Tests or
// production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = logger.Infof

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Logger returns the shared structured logger.
func Logger() *logrus.Logger {
	return logger
}

// Configure sets the level ("debug", "info", "warn", ...) and switches to
// JSON output when json is true.
func Configure(level string, json bool) error {
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logger.SetLevel(lvl)
	}
	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// SetOutput redirects the shared logger.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}
