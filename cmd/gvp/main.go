package main

import (
	"gvp-client/cmd/gvp/commands"
	"gvp-client/internal/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
