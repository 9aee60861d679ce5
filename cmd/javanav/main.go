// Package main is the entry point for the javanav CLI.
package main

import (
	"fmt"
	"os"

	"github.com/imyousuf/javanav/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
