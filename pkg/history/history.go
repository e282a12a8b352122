// Package history keeps capped, most-recent-first lists of past tool runs
// in a kv.Store.
//
// Each list is stored as one JSON array under a well-known key. Adding an
// entry prepends it and truncates the list to the limit, so after N
// additions the list holds min(N, limit) entries, newest first.
package history

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/kv"
	"github.com/matzehuels/deskkit/pkg/observability"
)

// DefaultLimit is the number of entries kept per list.
const DefaultLimit = 10

// Keys of the lists kept by the tools.
const (
	PaletteKey    = "paletteHistory"
	ExtractionKey = "extractionHistory"
	WatermarkKey  = "watermarkHistory"
)

// Lists maps short list names to their store keys.
var Lists = map[string]string{
	"palette":    PaletteKey,
	"extraction": ExtractionKey,
	"watermark":  WatermarkKey,
}

// Stored returns the names of the lists in Lists that have been written to
// store, sorted.
func Stored(ctx context.Context, store kv.Store) ([]string, error) {
	keys, err := store.Keys(ctx, "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list keys")
	}
	present := make(map[string]bool, len(keys))
	for _, k := range keys {
		present[k] = true
	}
	var names []string
	for name, key := range Lists {
		if present[key] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Entry is one remembered run.
type Entry struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Data      json.RawMessage `json:"data,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewEntry builds an entry with a fresh ID, marshalling data as its payload.
func NewEntry(title string, data any) (Entry, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return Entry{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "encode history payload")
		}
		raw = b
	}
	return Entry{
		ID:        uuid.NewString(),
		Title:     title,
		Data:      raw,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the entry payload into v.
func (e Entry) Decode(v any) error {
	if len(e.Data) == 0 {
		return errors.New(errors.ErrCodeNotFound, "history entry %s has no payload", e.ID)
	}
	return json.Unmarshal(e.Data, v)
}

// History is one capped list.
type History struct {
	store  kv.Store
	key    string
	limit  int
	logger *log.Logger
}

// Option configures a History.
type Option func(*History)

// WithLimit overrides DefaultLimit.
func WithLimit(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// WithLogger sets the logger used to report reset lists.
func WithLogger(l *log.Logger) Option {
	return func(h *History) { h.logger = l }
}

// New returns the list stored under key.
func New(store kv.Store, key string, opts ...Option) *History {
	h := &History{store: store, key: key, limit: DefaultLimit, logger: log.Default()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Key returns the store key of the list.
func (h *History) Key() string { return h.key }

// Limit returns the maximum list length.
func (h *History) Limit() int { return h.limit }

// List returns the entries, newest first. A stored value that does not
// decode is treated as an empty list and logged; the next Add overwrites it.
func (h *History) List(ctx context.Context) ([]Entry, error) {
	data, ok, err := h.store.Get(ctx, h.key)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read %s", h.key)
	}
	observability.Store().OnStoreRead(ctx, h.key, ok)
	if !ok || len(data) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		h.logger.Warn("discarding unreadable history", "key", h.key, "error", err)
		observability.Store().OnStoreReset(ctx, h.key, err)
		return nil, nil
	}
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	return entries, nil
}

// Add prepends e and truncates the list to the limit. Missing IDs and
// timestamps are filled in.
func (h *History) Add(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	entries, err := h.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	entries = append([]Entry{e}, entries...)
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	if err := h.save(ctx, entries); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Get returns the entry with id.
func (h *History) Get(ctx context.Context, id string) (Entry, error) {
	entries, err := h.List(ctx)
	if err != nil {
		return Entry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return Entry{}, errors.New(errors.ErrCodeNotFound, "no %s entry %s", h.key, id)
}

// Remove deletes the entry with id.
func (h *History) Remove(ctx context.Context, id string) error {
	entries, err := h.List(ctx)
	if err != nil {
		return err
	}
	for i, e := range entries {
		if e.ID == id {
			return h.save(ctx, append(entries[:i], entries[i+1:]...))
		}
	}
	return errors.New(errors.ErrCodeNotFound, "no %s entry %s", h.key, id)
}

// Clear removes the whole list.
func (h *History) Clear(ctx context.Context) error {
	if err := h.store.Delete(ctx, h.key); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "clear %s", h.key)
	}
	return nil
}

func (h *History) save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	if err := h.store.Set(ctx, h.key, data); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write %s", h.key)
	}
	observability.Store().OnStoreWrite(ctx, h.key, len(data))
	return nil
}
