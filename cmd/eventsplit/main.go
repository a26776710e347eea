package main

import (
	"os"

	"github.com/mmynk/eventsplit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
