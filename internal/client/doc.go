// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync client application: the process that
// owns the local SQLite store, edits records offline and keeps them in step
// with the remote store.
//
// [App] wires configuration, logging, the local store, the HTTP adapter and
// the client services together. [NewRootCommand] exposes it as a cobra
// command tree: a long-running "run" daemon plus one-shot commands for
// syncing, editing records and resolving conflicts.
package client
