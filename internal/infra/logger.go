// README: Process logger built on logrus; level and format come from config.
package infra

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// NewLogger returns a logrus logger writing to stdout. Unknown levels fall
// back to info; any format other than "text" is JSON.
func NewLogger(level, format string) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	}
	return log
}
