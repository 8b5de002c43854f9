package main

import (
	"os"

	"github.com/raiyan37/Centinel/internal/cli"
)

func main() {
	cli.LoadEnvFile()
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
