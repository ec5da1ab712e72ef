package service

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
)

var restartCmd = &cobra.Command{
	Use:   "restart [service id]",
	Short: "Restart service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := act(args[0], "restart"); err != nil {
			root.Fail(err)
		}
	},
}

func init() {
	serviceCmd.AddCommand(restartCmd)
}
