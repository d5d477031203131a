package commands

import (
	"fmt"

	"github.com/mosaicnetworks/reflector/src/service"
	"github.com/spf13/cobra"
)

//NewRunCmd returns the command that runs a single session
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run one session until it ends",
		PreRunE: loadConfig,
		RunE:    runSession,
	}
	AddConfigFlags(cmd)
	AddSessionFlags(cmd)
	cmd.Flags().Bool("no-service", _config.Reflector.NoService, "Disable HTTP service")
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runSession(cmd *cobra.Command, args []string) error {
	e, err := newEngine(&_config.Reflector)
	if err != nil {
		_config.Reflector.Logger().Error("Cannot initialize engine:", err)
		return err
	}
	defer e.close()

	d, err := e.manager.Start(&_config.Session)
	if err != nil {
		_config.Reflector.Logger().Error("Cannot start session:", err)
		return err
	}

	fmt.Println(d.String())

	if !_config.Reflector.NoService {
		s := service.NewService(_config.Reflector.ServiceAddr, e.manager, serviceOptions(), _config.Reflector.Logger())
		go s.Serve()
	}

	rt := e.manager.Current()
	if rt == nil {
		return nil
	}

	select {
	case <-rt.Done():
	case <-interrupted():
		_config.Reflector.Logger().Info("Interrupted")
	}

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddSessionFlags adds the session parameters to a command
func AddSessionFlags(cmd *cobra.Command) {
	cmd.Flags().String("uid", _config.Session.MyUID, "Own user id")
	cmd.Flags().String("peer-uid", _config.Session.PeerUID, "Opponent user id")
	cmd.Flags().String("server-host", _config.Session.ServerHost, "Rendezvous server host")
	cmd.Flags().Uint16("server-port", _config.Session.ServerPort, "Rendezvous server port")
	cmd.Flags().String("match-id", _config.Session.MatchID, "Match id reported when the session ends")

	// Emulator
	AddEmulatorFlags(cmd)
	cmd.Flags().Uint8("player", _config.Session.Player, "Player number")
	cmd.Flags().Uint16("delay", _config.Session.Delay, "Input delay in frames")
	cmd.Flags().String("name", _config.Session.UserName, "Name displayed by the emulator")
	cmd.Flags().String("game", _config.Session.GameName, "Game name (informational)")
	cmd.Flags().Uint16("game-port", _config.Session.EmulatorGamePort, "Port the emulator listens on")
	cmd.Flags().Uint16("listen-port", _config.Session.EmulatorListenPort, "Port on which to receive from the emulator")
}

//AddEmulatorFlags adds the emulator command flags. The HTTP service only
//launches the emulator configured here.
func AddEmulatorFlags(cmd *cobra.Command) {
	cmd.Flags().String("emulator", _config.Session.EmulatorPath, "Emulator executable")
	cmd.Flags().StringSlice("emulator-args", _config.Session.EmulatorArgs, "Replace the default emulator arguments")
}

func serviceOptions() service.Options {
	return service.Options{
		EmulatorPath:   _config.Session.EmulatorPath,
		EmulatorArgs:   _config.Session.EmulatorArgs,
		AllowedOrigins: _config.Reflector.ServiceOrigins,
	}
}
