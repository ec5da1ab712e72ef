package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"signalbox/cmd/root"
	"signalbox/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [service id]",
	Short: "Show the detail of one service",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showStatus(args[0]); err != nil {
			root.Fail(err)
		}
	},
}

func showStatus(name string) error {
	client := root.Client()
	defer client.Close()

	resp, err := client.Get("/api/v1/services/"+name, nil)
	if err != nil {
		return err
	}
	var d models.ServiceDetail
	if err := resp.Decode(&d); err != nil {
		return err
	}

	fmt.Printf("=== %s ===\n", d.ID)
	fmt.Printf("Description: %s\n", d.Description)
	fmt.Printf("Kind:        %s\n", d.Kind)
	fmt.Printf("Status:      %s\n", d.Status)
	if d.RequireSdr {
		fmt.Printf("SDR:         %s\n", d.SelectedSdr)
	}
	if d.Link != "" {
		fmt.Printf("Link:        %s\n", d.Link)
	}
	for _, k := range sortedKeys(d.Backend) {
		fmt.Printf("  %s: %s\n", k, d.Backend[k])
	}
	if len(d.Params) > 0 {
		pairs := make([]string, 0, len(d.Params))
		for _, k := range sortedKeys(d.Params) {
			pairs = append(pairs, k+"="+d.Params[k])
		}
		fmt.Printf("Params:      %s\n", strings.Join(pairs, " "))
	}
	if p := d.Process; p != nil {
		fmt.Printf("Command:     %s %s\n", p.Command, strings.Join(p.Args, " "))
		if p.Running {
			fmt.Printf("Pid:         %d (rss %d bytes, cpu %.1f%%)\n", p.Pid, p.RSS, p.CPUPercent)
		}
		if p.LastExitReason != "" {
			fmt.Printf("Last exit:   %s\n", p.LastExitReason)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	serviceCmd.AddCommand(statusCmd)
}
