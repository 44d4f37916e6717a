package main

import (
	"os"

	"github.com/rustyeddy/tradeorg/cmd/tradeorg/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
