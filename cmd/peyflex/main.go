// Command peyflex calls the Peyflex bills-payment API from the shell and
// prints every response as JSON.
package main

import (
	"fmt"
	"os"
)

var version = "dev" // Will be set during build

func main() {
	if err := newRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
