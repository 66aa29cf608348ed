package main

import (
	"os"

	"github.com/chiblo/poimap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
