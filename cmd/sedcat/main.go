// Package main is the entry point for the sedcat catalog tool.
package main

import (
	"os"

	"go.ngs.io/sed-api/cmd/sedcat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
