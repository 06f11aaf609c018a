// Package main is the entry point for systrayctl.
package main

import (
	"os"

	"github.com/systrayctl/systrayctl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
