// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordHash_StableForSameContent(t *testing.T) {
	payload := []byte(`{"name":"Wallet","currency":"EUR"}`)

	assert.Equal(t, RecordHash(payload, nil), RecordHash(payload, nil))
	assert.Len(t, RecordHash(payload, nil), 64)
}

func TestRecordHash_DeletedAtChangesHash(t *testing.T) {
	payload := []byte(`{"name":"Wallet"}`)
	deletedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	assert.NotEqual(t, RecordHash(payload, nil), RecordHash(payload, &deletedAt))
}

func TestRecordHash_DeletedAtTimezoneIndependent(t *testing.T) {
	payload := []byte(`{}`)
	utc := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	local := utc.In(time.FixedZone("UTC+3", 3*60*60))

	assert.Equal(t, RecordHash(payload, &utc), RecordHash(payload, &local))
}

func TestFingerprintIDs(t *testing.T) {
	tests := []struct {
		name  string
		a     []string
		b     []string
		equal bool
	}{
		{name: "same order", a: []string{"a", "b"}, b: []string{"a", "b"}, equal: true},
		{name: "different order", a: []string{"b", "a"}, b: []string{"a", "b"}, equal: true},
		{name: "duplicates ignored", a: []string{"a", "a", "b"}, b: []string{"b", "a"}, equal: true},
		{name: "different sets", a: []string{"a"}, b: []string{"a", "b"}, equal: false},
		{name: "no separator collisions", a: []string{"ab", "c"}, b: []string{"a", "bc"}, equal: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.equal {
				assert.Equal(t, FingerprintIDs(tt.a), FingerprintIDs(tt.b))
			} else {
				assert.NotEqual(t, FingerprintIDs(tt.a), FingerprintIDs(tt.b))
			}
		})
	}
}

func TestFingerprintIDs_Empty(t *testing.T) {
	assert.Equal(t, "", FingerprintIDs(nil))
	assert.Equal(t, "", FingerprintIDs([]string{}))
}

func TestFingerprintIDs_DoesNotMutateInput(t *testing.T) {
	ids := []string{"c", "a", "b"}
	FingerprintIDs(ids)
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestBodyHash(t *testing.T) {
	h := BodyHash([]byte(`{"records":[]}`))

	assert.Len(t, h, 64)
	assert.Equal(t, h, BodyHash([]byte(`{"records":[]}`)))
	assert.NotEqual(t, h, BodyHash([]byte(`{"records":[] }`)))
}
