// Package http implements the remote store's REST transport.
//
// It exposes the per-table push, pull and fetch endpoints used by sync
// clients together with the public version and info endpoints. Bearer
// authentication, request tracing, access logging, compression and body
// integrity checks run as middleware before a request reaches the service
// layer.
package http
