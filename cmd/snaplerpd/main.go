// Command snaplerpd demonstrates the snaplerp core end to end: a
// simulated jittery producer feeding a buffer, and a fixed-rate consumer
// tick loop draining it through the stepping engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
