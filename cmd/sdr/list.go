package sdr

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Rescan USB and list SDR dongles",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := root.Client()
		defer client.Close()

		resp, err := client.Get("/api/v1/sdrs", nil)
		if err != nil {
			root.Fail(err)
		}
		var devices []models.SdrDevice
		if err := resp.Decode(&devices); err != nil {
			root.Fail(err)
		}
		printDevices(devices)
	},
}

func init() {
	sdrCmd.AddCommand(listCmd)
}
