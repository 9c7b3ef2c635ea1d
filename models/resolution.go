package models

import "fmt"

// ResolutionStrategy selects how a conflict is settled.
type ResolutionStrategy string

const (
	// ResolutionKeepLocal re-queues the local copy with a version that beats
	// the server's.
	ResolutionKeepLocal ResolutionStrategy = "keep_local"
	// ResolutionKeepServer overwrites the local copy with the server's.
	ResolutionKeepServer ResolutionStrategy = "keep_server"
	// ResolutionManualMerge applies user-chosen fields to the local copy and
	// then behaves like ResolutionKeepLocal.
	ResolutionManualMerge ResolutionStrategy = "manual_merge"
)

// Resolution is the user's decision for one conflict.
type Resolution struct {
	Strategy ResolutionStrategy `json:"strategy"`
	// Fields is only used by ResolutionManualMerge.
	Fields map[string]any `json:"fields,omitempty"`
}

func KeepLocal() Resolution {
	return Resolution{Strategy: ResolutionKeepLocal}
}

func KeepServer() Resolution {
	return Resolution{Strategy: ResolutionKeepServer}
}

func ManualMerge(fields map[string]any) Resolution {
	return Resolution{Strategy: ResolutionManualMerge, Fields: fields}
}

// ParseResolutionStrategy converts user input into a strategy.
func ParseResolutionStrategy(s string) (ResolutionStrategy, error) {
	switch strategy := ResolutionStrategy(s); strategy {
	case ResolutionKeepLocal, ResolutionKeepServer, ResolutionManualMerge:
		return strategy, nil
	default:
		return "", fmt.Errorf("unknown resolution strategy %q", s)
	}
}
