// Package log provides the logger used by render commands.
package log

import (
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DebugEnv is the environment variable that enables debug output.
const DebugEnv = "RENDER_DEBUG"

var debug bool

func init() {
	var err error
	debug, err = strconv.ParseBool(os.Getenv(DebugEnv))
	if err != nil {
		debug = false
	}
}

// GetLogger returns a new logger instance
func GetLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if debug {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

// WithNode returns an entry that adds node fields to every message.
func WithNode(l logrus.FieldLogger, id, processor string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"node":      id,
		"processor": processor,
	})
}
