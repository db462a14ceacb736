//go:build windows

package mcp

import "os"

// Only Ctrl+C is delivered on Windows.
var shutdownSignals = []os.Signal{os.Interrupt}
