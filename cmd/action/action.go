package action

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Host actions offered by the keeper (list/run)",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List host actions",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := root.Client()
		defer client.Close()

		resp, err := client.Get("/api/v1/actions", nil)
		if err != nil {
			root.Fail(err)
		}
		var actions []models.Action
		if err := resp.Decode(&actions); err != nil {
			root.Fail(err)
		}
		t := root.NewTable("NAME", "TEXT", "COMMAND")
		for _, a := range actions {
			t.AppendRow([]interface{}{a.Name, a.Text, strings.Join(a.Argv, " ")})
		}
		t.Render()
	},
}

var runCmd = &cobra.Command{
	Use:   "run [name]",
	Short: "Run a host action on the keeper host",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := root.Client()
		defer client.Close()

		resp, err := client.Post("/api/v1/actions/"+args[0], nil)
		if err != nil {
			root.Fail(err)
		}
		var out struct {
			Output string `json:"output"`
		}
		if err := resp.Decode(&out); err != nil {
			root.Fail(err)
		}
		fmt.Print(out.Output)
	},
}

func init() {
	root.RootCmd.AddCommand(actionCmd)
	actionCmd.AddCommand(listCmd)
	actionCmd.AddCommand(runCmd)
}
