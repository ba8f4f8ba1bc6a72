// Package main is the entry point for the beauty CLI.
package main

import (
	"os"

	"github.com/kuuhaku1102/beauty/cmd/beauty/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
