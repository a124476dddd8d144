package main

import (
	"os"

	"github.com/bookreview-dev/bookreview/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
