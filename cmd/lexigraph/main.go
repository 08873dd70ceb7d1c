// Command lexigraph runs the hybrid graph-augmented retrieval engine: an
// HTTP server, one-shot retrieval from the shell, and a mode catalog.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
