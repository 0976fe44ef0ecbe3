// Package logx provides plain fmt.Fprintf-style diagnostics instead
// of pulling in a structured logging framework.
package logx

import (
	"fmt"
	"os"
)

// Verbose enables Debug output. Set from the CLI's --verbose flag.
var Verbose bool

// Warn prints a warning to stderr. Warnings never abort the caller.
func Warn(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// Info prints an informational line to stderr.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

// Debug prints only when Verbose is set.
func Debug(format string, args ...interface{}) {
	if Verbose {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}
