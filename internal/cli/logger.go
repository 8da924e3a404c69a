package cli

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/dshills/repolens/internal/config"
)

// newLogger builds the process logger. DEBUG=true forces debug level
// regardless of the configured one.
func newLogger(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	if os.Getenv("DEBUG") == "true" {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger
}
