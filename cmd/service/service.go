package service

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Service operations (list/status/start/stop/restart/param)",
	Long:  `Service operations (list/status/start/stop/restart/param)`,
}

const serviceExample = `  # start a service
  signalbox service start rtl433

  # retune a child process before the next start
  signalbox service param rtl433 freq 868M`

/**
 * Issue a lifecycle action and print the resulting status
 * @param {string} name - Service id
 * @param {string} action - start, stop or restart
 * @returns {error} Returns connection or API errors
 */
func act(name, action string) error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Post(fmt.Sprintf("/api/v1/services/%s/%s", name, action), nil)
	if err != nil {
		return err
	}
	var detail models.ServiceDetail
	if err := resp.Decode(&detail); err != nil {
		return err
	}
	fmt.Printf("Service '%s': %s\n", detail.ID, detail.Status)
	return nil
}

func init() {
	root.RootCmd.AddCommand(serviceCmd)

	serviceCmd.Example = serviceExample
}
