package service

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
)

var startCmd = &cobra.Command{
	Use:   "start [service id]",
	Short: "Start service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := act(args[0], "start"); err != nil {
			root.Fail(err)
		}
	},
}

func init() {
	serviceCmd.AddCommand(startCmd)
}
