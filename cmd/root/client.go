package root

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"signalbox/internal/config"
	"signalbox/internal/env"
	"signalbox/internal/logger"
	"signalbox/internal/rpc"
)

/**
 * Connect to the running keeper
 * @returns {rpc.HTTPClient} Returns a client on the configured socket or TCP address
 * @description
 * - An unreadable config falls back to the default socket and port
 */
func Client() rpc.HTTPClient {
	var socket, address string
	if cfg, err := config.LoadConfig(env.ConfigPath); err == nil {
		socket, address = cfg.Server.Socket, cfg.Server.Address
	} else {
		logger.Debugf("Using default keeper address: %v", err)
	}
	return rpc.NewHTTPClient(rpc.DefaultHTTPConfig(socket, address))
}

// NewTable returns a go-pretty writer on stdout with the CLI's common style.
func NewTable(header ...interface{}) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// Fail prints err and exits non-zero.
func Fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
