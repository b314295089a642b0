// Command msview imports mass-spectrometry acquisitions into a SQLite store
// and prints their derived views.
//
// Usage:
//
//	msview import --db path/to/msview.db --name NAME scans.json
//	msview list --db path/to/msview.db
//	msview show --db path/to/msview.db --id ID [--sort mass-to-charge] [--format json|jsonl|arrow]
//	msview delete --db path/to/msview.db --id ID
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
