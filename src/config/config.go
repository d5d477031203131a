package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database of session history.
	DefaultBadgerFile = "badger_db"

	// DefaultConfigName is the base name of the optional configuration file in
	// the data directory (reflector.toml, reflector.yaml, ...).
	DefaultConfigName = "reflector"
)

// Default configuration values.
const (
	DefaultLogLevel             = "debug"
	DefaultServiceAddr          = "127.0.0.1:8000"
	DefaultNoService            = false
	DefaultEventsRealm          = "reflector"
	DefaultStore                = false
	DefaultCacheSize            = 500
	DefaultFraming              = "legacy"
	DefaultHandshakeAttempts    = 15
	DefaultHandshakeInterval    = 1000 * time.Millisecond
	DefaultKeepaliveInterval    = 1000 * time.Millisecond
	DefaultEmulatorPollInterval = 750 * time.Millisecond
)

// Config contains the process-wide configuration of the relay. Session
// parameters are not part of it; they arrive with every start request.
type Config struct {
	// DataDir is the top-level directory containing configuration and data.
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log line in JSON format.
	LogFile string `mapstructure:"log-file"`

	// NoService disables the HTTP command surface.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the HTTP command surface.
	ServiceAddr string `mapstructure:"service-listen"`

	// ServiceOrigins are the browser origins allowed to send commands to the
	// HTTP service. Requests without an Origin header are always allowed.
	ServiceOrigins []string `mapstructure:"service-origins"`

	// EventsURL is the websocket URL of a WAMP router on which notifications
	// (proxy-log, sendAlert, endMatch, endMatchUI) are published. When empty,
	// notifications only go to the log.
	EventsURL string `mapstructure:"events-url"`

	// EventsRealm is the WAMP realm used for notifications.
	EventsRealm string `mapstructure:"events-realm"`

	// EventsListen, when set, starts an embedded WAMP router on this
	// address:port and publishes notifications on it.
	EventsListen string `mapstructure:"events-listen"`

	// Store activates persistant storage of session history.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// CacheSize is the max number of session records kept in memory.
	CacheSize int `mapstructure:"cache-size"`

	// ResourceDir is searched when resolving relative emulator and script
	// paths.
	ResourceDir string `mapstructure:"resource-dir"`

	// Framing selects how datagrams on the local socket are classified:
	// "legacy" sniffs content and is compatible with every deployed peer,
	// "tagged" prefixes peer datagrams with a type byte and must be enabled on
	// both sides.
	Framing string `mapstructure:"framing"`

	// HandshakeAttempts is the number of checks the handshake watchdog makes
	// before giving up on the rendezvous server.
	HandshakeAttempts int `mapstructure:"handshake-attempts"`

	// HandshakeInterval is the time between two handshake checks.
	HandshakeInterval time.Duration `mapstructure:"handshake-interval"`

	// KeepaliveInterval is the period of the NAT keepalive ping.
	KeepaliveInterval time.Duration `mapstructure:"keepalive-interval"`

	// EmulatorPollInterval is the period at which the emulator process is
	// checked for exit.
	EmulatorPollInterval time.Duration `mapstructure:"emulator-poll-interval"`

	// Clock drives every timer of a session. Tests replace it with a mock.
	Clock clock.Clock `mapstructure:"-"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:              DefaultDataDir(),
		LogLevel:             DefaultLogLevel,
		ServiceAddr:          DefaultServiceAddr,
		NoService:            DefaultNoService,
		EventsRealm:          DefaultEventsRealm,
		Store:                DefaultStore,
		DatabaseDir:          DefaultDatabaseDir(),
		CacheSize:            DefaultCacheSize,
		Framing:              DefaultFraming,
		HandshakeAttempts:    DefaultHandshakeAttempts,
		HandshakeInterval:    DefaultHandshakeInterval,
		KeepaliveInterval:    DefaultKeepaliveInterval,
		EmulatorPollInterval: DefaultEmulatorPollInterval,
		Clock:                clock.New(),
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	return config
}

// SetDataDir sets the top-level directory, and updates the database directory
// if it is currently set to the default value. If the database directory is not
// currently the default, it means the user has explicitely set it to something
// else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// GetClock returns the configured clock, or the wall clock if none was set.
func (c *Config) GetClock() clock.Clock {
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return c.Clock
}

// Logger returns a formatted logrus Entry, with prefix set to "reflector".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)
		if c.LogFile != "" {
			c.logger.AddHook(fileHook(c.LogFile))
		}
	}
	return c.logger.WithField("prefix", "reflector")
}

func fileHook(path string) logrus.Hook {
	pathMap := lfshook.PathMap{}
	for _, level := range logrus.AllLevels {
		pathMap[level] = path
	}
	return lfshook.NewHook(pathMap, &logrus.JSONFormatter{})
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir return the default directory name for top-level config based
// on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Reflector")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Reflector")
		} else {
			return filepath.Join(home, ".reflector")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
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
