// Package logging configures the structured logger the daemon hands to the
// bridge and the debug API. It wraps logrus rather than the standard log
// package, matching the logging library the daemon's own go.mod already
// commits to.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a *logrus.Logger at the given level (any value accepted by
// logrus.ParseLevel; an unparseable level falls back to Info rather than
// failing startup over a cosmetic setting).
func New(level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	l.SetLevel(parsed)
	return l
}
