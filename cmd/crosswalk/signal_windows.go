//go:build windows

package main

import "os"

// stopSignals end a run early or shut down the viewer. Windows has no
// SIGTERM.
var stopSignals = []os.Signal{os.Interrupt}
