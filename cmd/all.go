package cmd

import (
	_ "signalbox/cmd/action"
	_ "signalbox/cmd/misc"
	_ "signalbox/cmd/root"
	_ "signalbox/cmd/sdr"
	_ "signalbox/cmd/server"
	_ "signalbox/cmd/service"
)
