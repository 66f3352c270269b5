package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text or json
	Out    io.Writer
}

// ParseLevel maps a level name onto a logrus level. Unknown names fall back to info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// New builds a logger. Reports go to stdout, so logs default to the writer the caller passes
// (normally stderr).
func New(opt Options) (*logrus.Logger, error) {
	log := logrus.New()
	if opt.Out != nil {
		log.SetOutput(opt.Out)
	}
	log.SetLevel(ParseLevel(opt.Level))
	switch strings.ToLower(opt.Format) {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", opt.Format)
	}
	return log, nil
}
