package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"lifeos/internal/amqp"
	"lifeos/internal/cache"
	"lifeos/internal/core"
	"lifeos/internal/log"
	"lifeos/internal/sheets"
	"lifeos/internal/storage"
)

// Consumer delivers entry messages until ctx is done.
type Consumer interface {
	ConsumeEntryLogged(ctx context.Context, handler amqp.Handler) error
}

// MirrorWorker copies logged entries to a spreadsheet. Messages are the
// primary path; Reconcile catches entries whose message was lost.
type MirrorWorker struct {
	store     storage.BlobStore
	sheets    sheets.EntryWriter
	batchSize int
	logger    *log.Logger

	// seen holds recently handled message ids so redeliveries are cheap.
	seen cache.Cache[struct{}]

	// mu serializes read-modify-write of the mirrored set.
	mu sync.Mutex
}

func NewMirrorWorker(store storage.BlobStore, writer sheets.EntryWriter, batchSize int, logger *log.Logger) *MirrorWorker {
	if logger == nil {
		logger = log.Discard()
	}
	if batchSize < 1 {
		batchSize = 50
	}
	return &MirrorWorker{
		store:     store,
		sheets:    writer,
		batchSize: batchSize,
		logger:    logger.WithComponent(log.ComponentWorker),
		seen:      cache.NewLRUCache[struct{}](1024, 24*time.Hour),
	}
}

// Seen exposes the message id cache so a cache.Manager can sweep it.
func (w *MirrorWorker) Seen() cache.Cleaner {
	return w.seen
}

// EntryKey identifies an entry across the store and the mirror.
func EntryKey(e core.DomainEntry) string {
	return string(e.Domain) + "|" + e.Timestamp + "|" + e.Content
}

// HandleEntryLogged mirrors the entry carried by msg. Entries already in the
// mirror are skipped, so redelivery never duplicates rows.
func (w *MirrorWorker) HandleEntryLogged(ctx context.Context, msg *amqp.EntryLoggedMessage) error {
	if _, ok := w.seen.Get(msg.ID); ok {
		w.logger.DebugContext(ctx, "Skipping already handled message", log.FieldMessageID, msg.ID)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	mirrored, err := w.loadMirrored(ctx)
	if err != nil {
		return err
	}
	key := EntryKey(msg.Entry)
	if _, ok := mirrored[key]; !ok {
		if err := w.appendEntry(ctx, msg.Entry); err != nil {
			return err
		}
		mirrored[key] = struct{}{}
		if err := w.saveMirrored(ctx, mirrored); err != nil {
			return err
		}
	}
	w.seen.Set(msg.ID, struct{}{})
	return nil
}

// Reconcile appends up to batchSize stored entries missing from the mirror,
// oldest first. It returns how many were appended.
func (w *MirrorWorker) Reconcile(ctx context.Context) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	entries, err := w.loadEntries(ctx)
	if err != nil {
		return 0, err
	}
	mirrored, err := w.loadMirrored(ctx)
	if err != nil {
		return 0, err
	}

	pending := make([]core.DomainEntry, 0)
	for _, e := range entries.All() {
		if _, ok := mirrored[EntryKey(e)]; !ok {
			pending = append(pending, e)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	sortOldestFirst(pending)
	if len(pending) > w.batchSize {
		pending = pending[:w.batchSize]
	}

	w.logger.InfoContext(ctx, "Reconciling unmirrored entries", log.FieldEntryCount, len(pending))

	synced, failed := 0, 0
	for _, e := range pending {
		if err := w.appendEntry(ctx, e); err != nil {
			w.logger.ErrorContext(ctx, "Failed to mirror entry",
				log.NewFields().WithOperation(log.OpAppend).WithDomain(string(e.Domain)).WithError(err).ToSlice()...)
			failed++
			continue
		}
		mirrored[EntryKey(e)] = struct{}{}
		synced++
	}
	if synced > 0 {
		if err := w.saveMirrored(ctx, mirrored); err != nil {
			return synced, err
		}
	}

	w.logger.InfoContext(ctx, "Reconcile completed", "synced", synced, "errors", failed)
	return synced, nil
}

// Run consumes messages and reconciles every interval until ctx is done.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer, interval time.Duration) error {
	if _, err := w.Reconcile(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup reconcile failed", log.FieldError, err.Error())
	}

	errc := make(chan error, 1)
	if consumer != nil {
		go func() { errc <- consumer.ConsumeEntryLogged(ctx, w.HandleEntryLogged) }()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return fmt.Errorf("consume entries: %w", err)
		case <-ticker.C:
			if _, err := w.Reconcile(ctx); err != nil {
				w.logger.ErrorContext(ctx, "Periodic reconcile failed", log.FieldError, err.Error())
			}
		}
	}
}

func (w *MirrorWorker) appendEntry(ctx context.Context, e core.DomainEntry) error {
	start := time.Now()
	ref, err := w.sheets.AppendEntry(ctx, e)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}
	w.logger.InfoContext(ctx, "Mirrored entry",
		log.FieldSheetsRef, ref,
		log.FieldDomain, string(e.Domain),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (w *MirrorWorker) loadEntries(ctx context.Context) (core.EntryStore, error) {
	raw, found, err := w.store.Get(ctx, storage.KeyEntries)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	if !found {
		return core.NewEntryStore(), nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil || m == nil {
		w.logger.WarnContext(ctx, "Stored entries are malformed, nothing to reconcile", log.FieldStorageKey, storage.KeyEntries)
		return core.NewEntryStore(), nil
	}
	return core.EntryStoreFromMap(m), nil
}

func (w *MirrorWorker) loadMirrored(ctx context.Context) (map[string]struct{}, error) {
	set := map[string]struct{}{}
	raw, found, err := w.store.Get(ctx, storage.KeyMirrored)
	if err != nil {
		return nil, fmt.Errorf("read mirrored set: %w", err)
	}
	if !found {
		return set, nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		w.logger.WarnContext(ctx, "Mirrored set is malformed, starting over", log.FieldStorageKey, storage.KeyMirrored)
		return set, nil
	}
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set, nil
}

func (w *MirrorWorker) saveMirrored(ctx context.Context, set map[string]struct{}) error {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("marshal mirrored set: %w", err)
	}
	if err := w.store.Set(ctx, storage.KeyMirrored, string(b)); err != nil {
		return fmt.Errorf("write mirrored set: %w", err)
	}
	return nil
}

// sortOldestFirst orders entries by timestamp; unparseable ones go first.
func sortOldestFirst(entries []core.DomainEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, _ := entries[i].Time()
		tj, _ := entries[j].Time()
		return ti.Before(tj)
	})
}
