package main

import (
	"os"

	"github.com/ftpc/ftpc/internal/cli"
)

// Version information, normally injected via LDFLAGS at release time.
var (
	Version   = "v1.0.0"
	BuildTime = "2026-08-31"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
