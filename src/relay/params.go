package relay

import (
	"strings"

	"github.com/mosaicnetworks/reflector/src/common"
	"github.com/mosaicnetworks/reflector/src/emulator"
)

// Default emulator ports.
const (
	DefaultEmulatorGamePort   uint16 = 7000
	DefaultEmulatorListenPort uint16 = 7001
)

// Params are the parameters of one session.
type Params struct {
	MyUID      string `json:"my_uid" mapstructure:"uid"`
	PeerUID    string `json:"peer_uid" mapstructure:"peer-uid"`
	ServerHost string `json:"server_host" mapstructure:"server-host"`
	ServerPort uint16 `json:"server_port" mapstructure:"server-port"`

	// MatchID is reported in the end-of-match notification. When empty, the
	// match id announced by the rendezvous server is used.
	MatchID string `json:"match_id,omitempty" mapstructure:"match-id"`

	// EmulatorPath and EmulatorArgs come from local configuration only. They
	// are never decoded from a request body.
	EmulatorPath string `json:"-" mapstructure:"emulator"`
	Player       uint8  `json:"player" mapstructure:"player"`
	Delay        uint16 `json:"delay" mapstructure:"delay"`
	UserName     string `json:"user_name" mapstructure:"name"`

	// GameName is informational only.
	GameName string `json:"game_name,omitempty" mapstructure:"game"`

	// EmulatorGamePort is the port the emulator listens on. 0 means 7000.
	EmulatorGamePort uint16 `json:"emulator_game_port,omitempty" mapstructure:"game-port"`

	// EmulatorListenPort is the port on which the relay receives from the
	// emulator. 0 means 7001.
	EmulatorListenPort uint16 `json:"emulator_listen_port,omitempty" mapstructure:"listen-port"`

	// EmulatorArgs replaces the default argument list when not empty.
	EmulatorArgs []string `json:"-" mapstructure:"emulator-args"`
}

// Validate checks that every required parameter is present.
func (p *Params) Validate() error {
	missing := []string{}

	if strings.TrimSpace(p.MyUID) == "" {
		missing = append(missing, "my_uid")
	}
	if strings.TrimSpace(p.PeerUID) == "" {
		missing = append(missing, "peer_uid")
	}
	if strings.TrimSpace(p.ServerHost) == "" {
		missing = append(missing, "server_host")
	}
	if p.ServerPort == 0 {
		missing = append(missing, "server_port")
	}
	if strings.TrimSpace(p.EmulatorPath) == "" {
		missing = append(missing, "emulator_path")
	}

	if len(missing) > 0 {
		return common.NewSessionErr("relay", common.InvalidParams, "missing "+strings.Join(missing, ", "))
	}

	return nil
}

// GamePort returns the emulator game port, applying the default.
func (p *Params) GamePort() uint16 {
	if p.EmulatorGamePort == 0 {
		return DefaultEmulatorGamePort
	}
	return p.EmulatorGamePort
}

// ListenPort returns the requested emulator listen port, applying the
// default.
func (p *Params) ListenPort() uint16 {
	if p.EmulatorListenPort == 0 {
		return DefaultEmulatorListenPort
	}
	return p.EmulatorListenPort
}

// emulatorCommand builds the emulator invocation. boundPort is the port the
// emulator socket actually got, which differs from ListenPort when it was
// busy.
func (p *Params) emulatorCommand(boundPort uint16, resolver emulator.PathResolver) emulator.Command {
	path := p.EmulatorPath
	if resolver != nil {
		path = resolver.Resolve(path)
	}

	args := p.EmulatorArgs
	if len(args) == 0 {
		args = emulator.DefaultArgs(emulator.Template{
			GamePort:   p.GamePort(),
			ListenPort: boundPort,
			Player:     p.Player,
			Delay:      p.Delay,
			Name:       p.UserName,
		})
	}

	return emulator.Command{
		Path: path,
		Args: emulator.ResolveLuaArgs(args, resolver),
	}
}
