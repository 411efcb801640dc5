// Package main is the entry point of the discounts CLI.
package main

import (
	"os"

	"service-discounts/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
