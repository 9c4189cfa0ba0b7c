package deque

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logger = newLogger("mmap-deque")

func newLogger(name string) *logrus.Entry {
	l := logrus.New()
	l.Out = os.Stderr
	l.Level = logrus.InfoLevel
	l.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	}
	return l.WithField("name", name)
}

// SetLogLevel changes the level of the package logger used when
// Options.Logger is nil.
func SetLogLevel(lvl logrus.Level) {
	logger.Logger.SetLevel(lvl)
}
