package main

import (
	"os"

	"github.com/rustyeddy/btanalysis/cmd/btanalysis/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
