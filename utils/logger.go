package utils

import (
	"io"

	"github.com/sirupsen/logrus"
)

var (
	isVerbose bool
	log       = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

func SetVerbose(verbose bool) {
	isVerbose = verbose
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
}

func IsVerbose() bool {
	return isVerbose
}

// SetOutput redirects log output, e.g. to a daemon log file.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Logger exposes the underlying logger for callers that want fields.
func Logger() *logrus.Logger {
	return log
}

func Verbose(format string, args ...interface{}) {
	if isVerbose {
		log.Debugf(format, args...)
	}
}

func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
