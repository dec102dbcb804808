package main

import (
	"os"

	"github.com/armadaproject/tierprobe/cmd/tierprobe/cmd"
	"github.com/armadaproject/tierprobe/internal/common"
)

func main() {
	common.ConfigureCommandLineLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
