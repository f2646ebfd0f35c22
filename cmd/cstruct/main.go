// Package main is the entry point for the cstruct CLI tool.
package main

import (
	"os"

	"github.com/contentstruct/contentstruct/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
