package commands

import (
	"github.com/spf13/cobra"
)

var (
	_config = NewDefaultCLIConfig()
)

//RootCmd is the root command for reflector
var RootCmd = &cobra.Command{
	Use:              "reflector",
	Short:            "peer-to-peer UDP bridge for emulator netplay",
	TraverseChildren: true,
}
