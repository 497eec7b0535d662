// Command otpctl generates, verifies and inspects one-time codes offline.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
