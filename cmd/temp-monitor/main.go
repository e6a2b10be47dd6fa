package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/KyleBrandon/temp-monitor/pkg/server"
)

func main() {
	// parse the command-line flags
	flag.Parse()

	if err := server.InitializeServer(); err != nil {
		slog.Error("failed to start the temperature monitor", "error", err)
		os.Exit(1)
	}
}
