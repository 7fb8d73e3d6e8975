package main

import (
	"os"

	"github.com/mk5-wallet/mk5/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
