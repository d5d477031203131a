// Package config defines the process-wide configuration of the relay.
//
// The CLI and the HTTP command surface both build a Config and hand it to the
// session manager. Besides logging and storage options, it carries the timing
// constants of every session (handshake attempts and interval, keepalive
// period, emulator poll period) and the clock that drives them. The data
// directory, Config.DataDir, may contain:
//
//  reflector.toml // (optional) configuration file, any format supported by viper.
//  badger_db/     // (optional) session history, when Store is enabled.
package config
