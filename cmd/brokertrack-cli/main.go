package main

import (
	"brokertrack-backend/cmd/brokertrack-cli/commands"
	"brokertrack-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
