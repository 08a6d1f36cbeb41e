package main

import (
	"os"

	"github.com/nellaby/tableguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
