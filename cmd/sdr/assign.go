package sdr

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var assignCmd = &cobra.Command{
	Use:   "assign [service id] [serial]",
	Short: "Assign a dongle to a service, applied on next start",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := assign(args[0], args[1]); err != nil {
			root.Fail(err)
		}
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign [service id]",
	Short: "Release the dongle of a service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := assign(args[0], ""); err != nil {
			root.Fail(err)
		}
	},
}

func assign(service, serial string) error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Post("/api/v1/sdrs/assign", models.AssignRequest{Service: service, Serial: serial})
	if err != nil {
		return err
	}
	var devices []models.SdrDevice
	if err := resp.Decode(&devices); err != nil {
		return err
	}
	if serial == "" {
		fmt.Printf("Service '%s' released its SDR\n", service)
	} else {
		fmt.Printf("Service '%s' now uses SDR %s\n", service, serial)
	}
	printDevices(devices)
	return nil
}

func init() {
	sdrCmd.AddCommand(assignCmd)
	sdrCmd.AddCommand(unassignCmd)
}
