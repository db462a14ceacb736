//go:build !windows

package main

import (
	"os"
	"syscall"
)

// stopSignals end a run early or shut down the viewer.
var stopSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
