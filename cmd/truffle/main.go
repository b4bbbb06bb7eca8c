// Package main provides the truffle command.
package main

import (
	"os"

	"github.com/truffle-sql/truffle/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
