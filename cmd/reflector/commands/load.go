package commands

import (
	"github.com/mosaicnetworks/reflector/src/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// AddConfigFlags adds the flags shared by every command that runs sessions.
func AddConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("datadir", _config.Reflector.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.Reflector.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.Reflector.LogFile, "Also write logs, in JSON, to this file")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.Reflector.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().StringSlice("service-origins", _config.Reflector.ServiceOrigins, "Browser origins allowed to send commands to the HTTP service")

	// Events
	cmd.Flags().String("events-url", _config.Reflector.EventsURL, "WAMP router (ws://host:port/) on which to publish notifications")
	cmd.Flags().String("events-realm", _config.Reflector.EventsRealm, "WAMP realm for notifications")
	cmd.Flags().String("events-listen", _config.Reflector.EventsListen, "Listen IP:Port for an embedded WAMP router")

	// Store
	cmd.Flags().Bool("store", _config.Reflector.Store, "Keep session history in badgerDB instead of in memory")
	cmd.Flags().String("db", _config.Reflector.DatabaseDir, "Database directory")
	cmd.Flags().Int("cache-size", _config.Reflector.CacheSize, "Number of session records kept in memory")

	// Relay
	cmd.Flags().String("resource-dir", _config.Reflector.ResourceDir, "Directory searched for relative emulator and lua paths")
	cmd.Flags().String("framing", _config.Reflector.Framing, "legacy or tagged")
	cmd.Flags().Int("handshake-attempts", _config.Reflector.HandshakeAttempts, "Number of handshake checks before giving up")
	cmd.Flags().Duration("handshake-interval", _config.Reflector.HandshakeInterval, "Time between handshake checks")
	cmd.Flags().Duration("keepalive-interval", _config.Reflector.KeepaliveInterval, "Time between keepalive pings")
	cmd.Flags().Duration("emulator-poll-interval", _config.Reflector.EmulatorPollInterval, "Time between emulator exit checks")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.Reflector.SetDataDir(_config.Reflector.DataDir)

	logFields := logrus.Fields{
		"reflector.DataDir":           _config.Reflector.DataDir,
		"reflector.LogLevel":          _config.Reflector.LogLevel,
		"reflector.ServiceAddr":       _config.Reflector.ServiceAddr,
		"reflector.ServiceOrigins":    _config.Reflector.ServiceOrigins,
		"reflector.NoService":         _config.Reflector.NoService,
		"reflector.EventsURL":         _config.Reflector.EventsURL,
		"reflector.EventsListen":      _config.Reflector.EventsListen,
		"reflector.Store":             _config.Reflector.Store,
		"reflector.Framing":           _config.Reflector.Framing,
		"reflector.HandshakeAttempts": _config.Reflector.HandshakeAttempts,
		"reflector.KeepaliveInterval": _config.Reflector.KeepaliveInterval,
	}

	if _config.Reflector.Store {
		logFields["reflector.DatabaseDir"] = _config.Reflector.DatabaseDir
	}

	_config.Reflector.Logger().WithFields(logFields).Debug("Config")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/reflector.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigName)
	viper.AddConfigPath(_config.Reflector.DataDir)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Reflector.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Reflector.Logger().Debugf("No config file found in: %s", _config.Reflector.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
