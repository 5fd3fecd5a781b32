package main

import (
	"os"

	"github.com/aki/treesync/internal/cli/commands"
)

func main() {
	// cobra already printed the error
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
