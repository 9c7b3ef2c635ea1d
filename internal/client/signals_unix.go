//go:build !windows

package client

import (
	"os"
	"syscall"
)

var manualSyncSignals = []os.Signal{syscall.SIGUSR1}
