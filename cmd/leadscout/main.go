// Package main provides the entry point for the leadscout CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/wilson66200519-bit/leadscout/internal/cli"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
