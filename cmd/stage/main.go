// Command stage stages changes to the collections declared in stage.yaml
// and commits them together.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// fatal reports a failed operation and exits with status 1. Staged changes
// are never flushed past this point.
func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
