package main

import (
	"os"

	_ "signalbox/cmd"
	"signalbox/cmd/root"
)

func main() {
	if err := root.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
