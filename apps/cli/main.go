package main

import "github.com/abdul-hamid-achik/secprobe/apps/cli/cmd"

// Set with -ldflags at release time
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	cmd.Execute(version, buildTime)
}
