// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// remote store's HTTP handlers and middleware.
//
// All Msg* constants are human-readable message strings written into error
// response bodies. Client errors (4xx) carry the underlying error text; server
// errors (5xx) carry only one of these messages so database details never
// reach the client.
package app

const (
	// MsgInvalidJSON is returned when a request body cannot be decoded.
	MsgInvalidJSON = "invalid JSON was passed"

	// MsgInvalidLimit is returned when the pull "limit" query parameter is
	// not an integer.
	MsgInvalidLimit = "invalid limit"

	// MsgUnreadableBody is returned when the request body cannot be read.
	MsgUnreadableBody = "failed to read request body"

	// MsgNoUserIDProvided is returned when an authenticated route runs
	// without a user ID in the request context.
	MsgNoUserIDProvided = "no user ID was given"

	// MsgInternalServerError is returned for every unexpected server-side
	// failure, including storage errors.
	MsgInternalServerError = "internal server error"

	// MsgRequestTimeout is returned when the request deadline expired before
	// the store finished.
	MsgRequestTimeout = "request timed out"
)
