package service

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var paramCmd = &cobra.Command{
	Use:   "param [service id] [name] [value]",
	Short: "Override a command placeholder of a child-process service",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		if err := setParam(args[0], args[1], args[2]); err != nil {
			root.Fail(err)
		}
	},
}

func setParam(name, key, value string) error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Put(fmt.Sprintf("/api/v1/services/%s/params", name), models.ParamRequest{Name: key, Value: value})
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}
	fmt.Printf("Service '%s': %s=%s, applied on next start\n", name, key, value)
	return nil
}

func init() {
	serviceCmd.AddCommand(paramCmd)
}
