package client

import "os"

// Windows has no user signals; use `sync` against a stopped daemon instead.
var manualSyncSignals []os.Signal
