package misc

import (
	"fmt"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show keeper health and counters",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := root.Client()
		defer client.Close()

		resp, err := client.Get("/healthz", nil)
		if err != nil {
			root.Fail(err)
		}
		var h models.HealthResponse
		if err := resp.Decode(&h); err != nil {
			root.Fail(err)
		}
		fmt.Printf("Status:   %s (version %s, up %s since %s)\n", h.Status, h.Version, h.Uptime, h.StartTime)
		fmt.Printf("Services: %d running of %d\n", h.Metrics.RunningServices, h.Metrics.TotalServices)
		fmt.Printf("SDRs:     %d\n", h.Metrics.SdrDevices)
		fmt.Printf("Requests: %d (%d failed)\n", h.Metrics.TotalRequests, h.Metrics.ErrorRequests)
	},
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List the external links configured on the keeper",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		client := root.Client()
		defer client.Close()

		resp, err := client.Get("/api/v1/links", nil)
		if err != nil {
			root.Fail(err)
		}
		var links []models.Link
		if err := resp.Decode(&links); err != nil {
			root.Fail(err)
		}
		t := root.NewTable("NAME", "URL")
		for _, l := range links {
			t.AppendRow([]interface{}{l.Name, l.URL})
		}
		t.Render()
	},
}

func init() {
	root.RootCmd.AddCommand(healthCmd)
	root.RootCmd.AddCommand(linksCmd)
}
