package session

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"

	"lifeos/internal/core"
	"lifeos/internal/log"
	"lifeos/internal/storage"
)

// persisted is the state recovered from the blob store. Anything missing or
// malformed is replaced by its default.
type persisted struct {
	entries   core.EntryStore
	insight   *core.InsightData
	chat      []core.ChatMessage
	checklist []core.ChecklistItem
}

// loadPersisted reads the four blobs concurrently. It only fails when ctx
// is cancelled; read and parse problems fall back silently.
func loadPersisted(ctx context.Context, store storage.BlobStore, logger *log.Logger) (persisted, error) {
	p := persisted{
		entries:   core.NewEntryStore(),
		chat:      []core.ChatMessage{},
		checklist: core.DefaultChecklist(),
	}
	if store == nil {
		return p, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if m, ok := readObject(gctx, store, storage.KeyEntries, logger); ok {
			p.entries = core.EntryStoreFromMap(m)
		}
		return gctx.Err()
	})
	g.Go(func() error {
		if m, ok := readObject(gctx, store, storage.KeyInsight, logger); ok {
			in := core.InsightFromMap(m)
			p.insight = &in
		}
		return gctx.Err()
	})
	g.Go(func() error {
		if arr, ok := readArray(gctx, store, storage.KeyChat, logger); ok {
			p.chat = core.ChatFromSlice(arr)
		}
		return gctx.Err()
	})
	g.Go(func() error {
		if arr, ok := readArray(gctx, store, storage.KeyChecklist, logger); ok {
			if items := core.ChecklistFromSlice(arr); len(items) > 0 {
				p.checklist = items
			}
		}
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return p, fmt.Errorf("load persisted state: %w", err)
	}
	return p, nil
}

func readBlob(ctx context.Context, store storage.BlobStore, key string, logger *log.Logger) (string, bool) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		logger.Debug("Stored state unreadable, using defaults",
			log.NewFields().WithOperation(log.OpLoad).WithStorageKey(key).WithError(err).ToSlice()...)
		return "", false
	}
	return raw, found
}

func readObject(ctx context.Context, store storage.BlobStore, key string, logger *log.Logger) (map[string]any, bool) {
	raw, ok := readBlob(ctx, store, key, logger)
	if !ok {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		logger.Debug("Stored state is not an object, using defaults", log.FieldStorageKey, key)
		return nil, false
	}
	return m, true
}

func readArray(ctx context.Context, store storage.BlobStore, key string, logger *log.Logger) ([]any, bool) {
	raw, ok := readBlob(ctx, store, key, logger)
	if !ok {
		return nil, false
	}
	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err != nil || arr == nil {
		logger.Debug("Stored state is not an array, using defaults", log.FieldStorageKey, key)
		return nil, false
	}
	return arr, true
}

// writeBlob serializes v under key. Failures are logged, never returned:
// storage is a mirror of the session, not its source of truth.
func writeBlob(ctx context.Context, store storage.BlobStore, key string, v any, logger *log.Logger) {
	if store == nil {
		return
	}
	b, err := json.Marshal(v)
	if err == nil {
		err = store.Set(ctx, key, string(b))
	}
	if err != nil {
		logger.Warn("Failed to persist state",
			log.NewFields().WithOperation(log.OpPersist).WithStorageKey(key).
				WithErrorType(log.ErrorTypeStorage).WithError(err).ToSlice()...)
	}
}
