package main

import (
	"os"

	"github.com/banban-dev/banban/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
