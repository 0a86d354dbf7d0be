package contract

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// InitLogger configures the standard logrus logger. Logs always go to stderr
// so that stdout stays reserved for reports and the MCP transport.
func InitLogger(level, format string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "", LogFormatText:
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	case LogFormatJSON:
		logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return fmt.Errorf("invalid log format %q. must be text or json", format)
	}
	return nil
}
