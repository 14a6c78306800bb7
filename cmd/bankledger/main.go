package main

import (
	"os"

	"github.com/saltyjared/banking-system/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
