package config

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/pimukthee/dist-challenge/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default configuration values.
const (
	DefaultLogLevel         = "info"
	DefaultLogFile          = ""
	DefaultHeartbeatTimeout = 300 * time.Millisecond
	DefaultGossipLimit      = 0
	DefaultServiceAddr      = ""
)

// Config contains all the configuration properties of a node.
type Config struct {
	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log entry in addition to
	// standard error.
	LogFile string `mapstructure:"log-file"`

	// HeartbeatTimeout is the interval of the gossip timer.
	HeartbeatTimeout time.Duration `mapstructure:"heartbeat"`

	// GossipLimit is the max number of values in one gossip envelope. Zero
	// means no limit.
	GossipLimit int `mapstructure:"gossip-limit"`

	// ServiceAddr is the address:port of the optional HTTP service. Empty
	// disables it. Several nodes usually share a host, so it is off by default.
	ServiceAddr string `mapstructure:"service-listen"`

	// LogOutput is where log entries go. Standard output carries the protocol,
	// so it defaults to standard error.
	LogOutput io.Writer `mapstructure:"-"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		LogLevel:         DefaultLogLevel,
		LogFile:          DefaultLogFile,
		HeartbeatTimeout: DefaultHeartbeatTimeout,
		GossipLimit:      DefaultGossipLimit,
		ServiceAddr:      DefaultServiceAddr,
		LogOutput:        os.Stderr,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.HeartbeatTimeout = 10 * time.Millisecond
	config.logger = common.NewTestLogger(t, level)
	return config
}

// Logger returns a formatted logrus Entry, with prefix set to "rumor".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = &prefixed.TextFormatter{FullTimestamp: true}
		if c.LogOutput != nil {
			c.logger.Out = c.LogOutput
		}
		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				lfshook.PathMap{
					logrus.DebugLevel: c.LogFile,
					logrus.InfoLevel:  c.LogFile,
					logrus.WarnLevel:  c.LogFile,
					logrus.ErrorLevel: c.LogFile,
					logrus.FatalLevel: c.LogFile,
					logrus.PanicLevel: c.LogFile,
				},
				&logrus.JSONFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "rumor")
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
