package misc

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
)

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload server configuration",
	Long:  `Ask the running keeper to re-read its config file. Owned child processes are stopped and the registry is rebuilt`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := reloadServerConfig(); err != nil {
			root.Fail(err)
		}
	},
}

/**
 * Reload server configuration via the keeper API
 * @returns {error} Returns connection errors or the validation error reported by the keeper
 */
func reloadServerConfig() error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Post("/api/v1/reload", nil)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	fmt.Println("Successfully reloaded server configuration")
	return nil
}

func init() {
	root.RootCmd.AddCommand(reloadCmd)
}
