// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the shape of inbound sync requests before they
// reach the remote store's batch logic.
//
// Validation here is structural: known table, non-empty ids, sane versions
// and page limits. Whether a payload decodes into its table's variant, or
// violates a constraint, is decided per record by the sync service so one bad
// record never fails a whole batch.
package validators

import "context"

// Validator defines a generic validation interface for arbitrary input values.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
