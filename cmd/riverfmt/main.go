package main

import (
	"os"

	"github.com/riverfmt/riverfmt/cmd/riverfmt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
