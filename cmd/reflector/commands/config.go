package commands

import (
	"github.com/mosaicnetworks/reflector/src/config"
	"github.com/mosaicnetworks/reflector/src/relay"
)

//CLIConfig contains configuration for the Run and Serve commands
type CLIConfig struct {
	Reflector config.Config `mapstructure:",squash"`
	Session   relay.Params  `mapstructure:",squash"`
}

//NewDefaultCLIConfig creates a CLIConfig with default values
func NewDefaultCLIConfig() *CLIConfig {
	return &CLIConfig{
		Reflector: *config.NewDefaultConfig(),
		Session: relay.Params{
			EmulatorGamePort:   relay.DefaultEmulatorGamePort,
			EmulatorListenPort: relay.DefaultEmulatorListenPort,
		},
	}
}
