package main

import (
	"os"

	"github.com/joacominatel/telemetrydash/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
