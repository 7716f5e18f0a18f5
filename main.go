package main

import (
	"os"

	"github.com/lockedin/go-focus-monitor/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
