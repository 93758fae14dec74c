package config

import (
	"fmt"
	"os"
)

// Exitf prints a formatted message to stderr and exits with status 1.
// The storyd and seed mains call it for startup failures that should
// not produce a stack trace.
func Exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
