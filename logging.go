package bytebuf

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

var logger atomic.Pointer[logrus.Logger]

func init() {
	logger.Store(logrus.StandardLogger())
}

// SetLogger replaces the package logger. A nil logger restores logrus'
// standard logger.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		l = logrus.StandardLogger()
	}
	logger.Store(l)
}

func debugEnabled() bool {
	return logger.Load().IsLevelEnabled(logrus.DebugLevel)
}

// debugf builds an entry only when debug logging is on.
func debugf(format string, args ...any) {
	l := logger.Load()
	if !l.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	l.WithField("pkg", "bytebuf").Debugf(format, args...)
}
