// Package main provides the entry point for llcsim.
// llcsim is a last-level-cache replacement-policy simulator built on the
// Akita cache components.
//
// For the full CLI, use: go run ./cmd/llcsim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("llcsim - LLC Replacement Policy Simulator")
	fmt.Println("")
	fmt.Println("Usage: llcsim [options]")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -trace      Trace to run: sequential, hotset, mix, random")
	fmt.Println("  -n          Number of accesses to simulate")
	fmt.Println("  -config     Path to replacement engine JSON config file")
	fmt.Println("  -v          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/llcsim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/llcsim' instead.")
	}
}
