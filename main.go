package main

import (
	"os"

	"github.com/velumweb/velum/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
