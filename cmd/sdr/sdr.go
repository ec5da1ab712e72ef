package sdr

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var sdrCmd = &cobra.Command{
	Use:   "sdr",
	Short: "SDR dongle inventory and assignment",
}

const sdrExample = `  # show attached dongles and who uses them
  signalbox sdr list

  # hand dongle 00000002 to dump1090
  signalbox sdr assign dump1090 00000002`

func printDevices(devices []models.SdrDevice) {
	t := root.NewTable("INDEX", "SERIAL", "USB ID", "DEVICE", "IN USE BY")
	for i := range devices {
		d := &devices[i]
		t.AppendRow([]interface{}{d.IndexLabel(), d.Key(), d.VidPid(), d.Friendly, d.Status})
	}
	t.Render()
}

func init() {
	root.RootCmd.AddCommand(sdrCmd)

	sdrCmd.Example = sdrExample
}
