package service

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
)

var stopCmd = &cobra.Command{
	Use:   "stop [service id]",
	Short: "Stop service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := act(args[0], "stop"); err != nil {
			root.Fail(err)
		}
	},
}

func init() {
	serviceCmd.AddCommand(stopCmd)
}
