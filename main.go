// Package main provides the entry point for CacheSim.
// CacheSim is a set-associative LRU cache simulator driven by address traces.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("CacheSim - Set-Associative LRU Cache Simulator")
	fmt.Println("")
	fmt.Println("Usage: cachesim run [options] <cacheSizeKB> <associativity> <blockSize> <trace>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  run       Replay a trace and print hit/miss statistics")
	fmt.Println("  gen       Write a synthetic trace")
	fmt.Println("  config    Print or save a cache preset")
	fmt.Println("  bench     Run the reference workloads")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/cachesim --help' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/cachesim' instead.")
	}
}
