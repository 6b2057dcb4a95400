// Package storage persists LifeOS state as opaque string blobs under a few
// well-known keys. It knows nothing about what the blobs contain.
package storage

import (
	"context"
	"errors"
)

// Keys of the persisted blobs.
const (
	KeyEntries   = "lifeos_entries"
	KeyInsight   = "lifeos_insight"
	KeyChat      = "lifeos_chat"
	KeyChecklist = "lifeos_checklist"

	// KeyMirrored is owned by the mirror worker: the entries already
	// appended to the spreadsheet.
	KeyMirrored = "lifeos_mirrored"
)

// AllKeys lists every key the application writes.
var AllKeys = []string{KeyEntries, KeyInsight, KeyChat, KeyChecklist, KeyMirrored}

var ErrEmptyKey = errors.New("empty key")

// BlobStore is a string key/value store. Get reports found=false for a
// missing key rather than an error.
type BlobStore interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
