package service

import (
	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List services and their status",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listServices(); err != nil {
			root.Fail(err)
		}
	},
}

func listServices() error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Get("/api/v1/services", nil)
	if err != nil {
		return err
	}
	var details []models.ServiceDetail
	if err := resp.Decode(&details); err != nil {
		return err
	}

	t := root.NewTable("ID", "KIND", "STATUS", "SDR", "DESCRIPTION")
	for _, d := range details {
		sdr := "-"
		if d.RequireSdr {
			sdr = d.SelectedSdr
		}
		t.AppendRow([]interface{}{d.ID, d.Kind, d.Status, sdr, d.Description})
	}
	t.Render()
	return nil
}

func init() {
	serviceCmd.AddCommand(listCmd)
}
