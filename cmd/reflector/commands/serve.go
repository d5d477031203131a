package commands

import (
	"github.com/mosaicnetworks/reflector/src/service"
	"github.com/spf13/cobra"
)

//NewServeCmd returns the command that exposes the session manager over HTTP
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API that starts and stops sessions",
		PreRunE: loadConfig,
		RunE:    serve,
	}
	AddConfigFlags(cmd)
	AddEmulatorFlags(cmd)
	return cmd
}

func serve(cmd *cobra.Command, args []string) error {
	e, err := newEngine(&_config.Reflector)
	if err != nil {
		_config.Reflector.Logger().Error("Cannot initialize engine:", err)
		return err
	}
	defer e.close()

	s := service.NewService(_config.Reflector.ServiceAddr, e.manager, serviceOptions(), _config.Reflector.Logger())
	go s.Serve()

	<-interrupted()

	_config.Reflector.Logger().Info("Interrupted")

	return nil
}
