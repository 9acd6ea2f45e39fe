package helpers

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger. Development gets colored text at
// debug level; every other env gets JSON. A valid level overrides the
// env default.
func NewLogger(appName, env, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	lvl := logrus.InfoLevel
	if env == "development" {
		lvl = logrus.DebugLevel
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{FieldMap: logrus.FieldMap{logrus.FieldKeyMsg: "message"}})
	}
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			l.WithError(err).Warn("ignoring LOG_LEVEL")
		} else {
			lvl = parsed
		}
	}
	l.SetLevel(lvl)
	l.WithFields(logrus.Fields{"app": appName, "env": env, "level": lvl.String()}).Debug("logger ready")
	return l
}

// NopLogger discards everything.
func NopLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
