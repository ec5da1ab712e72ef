package root

import (
	"github.com/spf13/cobra"

	"signalbox/internal/env"
)

var RootCmd = &cobra.Command{
	Use:   "signalbox",
	Short: "SDR service keeper",
	Long: `signalbox starts, stops and monitors radio services backed by systemd units,
docker containers or child processes, and hands out attached SDR dongles to them`,
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&env.ConfigPath, "config", "c", "", "config file (default ./config.yml or /etc/signalbox/config.yml)")
}
