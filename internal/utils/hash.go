package utils

import (
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// RecordHash fingerprints the synced content of a record: its payload and
// soft-delete marker. Two copies with the same hash are equal for sync
// purposes, so the pull engine can skip rewriting them.
//
// Example usage:
//
//	h := utils.RecordHash(record.Payload, record.DeletedAt)
func RecordHash(payload []byte, deletedAt *time.Time) string {
	h, _ := blake2b.New256(nil)
	h.Write(payload)
	if deletedAt != nil {
		h.Write([]byte{0})
		h.Write([]byte(deletedAt.UTC().Format(time.RFC3339Nano)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// FingerprintIDs returns an order-independent fingerprint of a set of ids.
// Duplicates are ignored. An empty set yields an empty string.
func FingerprintIDs(ids []string) string {
	if len(ids) == 0 {
		return ""
	}

	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	sum := blake2b.Sum256([]byte(strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:])
}

// ContentHashHeader carries the [BodyHash] of a request body.
const ContentHashHeader = "X-Content-Hash"

// BodyHash returns the hex blake2b-256 digest of a raw request body.
func BodyHash(body []byte) string {
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:])
}
