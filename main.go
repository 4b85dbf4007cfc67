package main

import (
	"os"

	"github.com/alexander-edwards/asana-clone-app-fullstack/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
