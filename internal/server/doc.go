// Package server runs the remote store's HTTP transport.
//
// It owns the listener lifecycle: startup, signal handling, and graceful
// shutdown that lets in-flight sync requests finish.
package server
