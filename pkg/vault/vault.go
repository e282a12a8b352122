// Package vault stores short text notes under a name and password.
//
// All notes live in one JSON object under VaultKey, indexed by
// base64(name + ":" + password). The password only selects the record; it
// does not encrypt anything, and anyone with store access can read every
// note.
package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deskkit/pkg/errors"
	"github.com/matzehuels/deskkit/pkg/kv"
	"github.com/matzehuels/deskkit/pkg/observability"
)

// VaultKey is the store key holding all notes.
const VaultKey = "textVaultNotes"

// Note is one stored text.
type Note struct {
	Name      string    `json:"name"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Vault reads and writes notes in a kv.Store.
type Vault struct {
	store  kv.Store
	logger *log.Logger
}

// New returns a vault backed by store.
func New(store kv.Store, logger *log.Logger) *Vault {
	if logger == nil {
		logger = log.Default()
	}
	return &Vault{store: store, logger: logger}
}

// LookupKey derives the record key for name and password.
func LookupKey(name, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(name + ":" + password))
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New(errors.ErrCodeInvalidInput, "note name is required")
	}
	return nil
}

// Save stores text under name and password, replacing an existing note with
// the same pair.
func (v *Vault) Save(ctx context.Context, name, password, text string) (Note, error) {
	if err := validateName(name); err != nil {
		return Note{}, err
	}
	notes, err := v.load(ctx)
	if err != nil {
		return Note{}, err
	}

	now := time.Now().UTC()
	key := LookupKey(name, password)
	note, ok := notes[key]
	if !ok {
		note = Note{Name: name, CreatedAt: now}
	}
	note.Text = text
	note.UpdatedAt = now
	notes[key] = note

	if err := v.save(ctx, notes); err != nil {
		return Note{}, err
	}
	return note, nil
}

// Load returns the note for name and password.
func (v *Vault) Load(ctx context.Context, name, password string) (Note, error) {
	if err := validateName(name); err != nil {
		return Note{}, err
	}
	notes, err := v.load(ctx)
	if err != nil {
		return Note{}, err
	}
	note, ok := notes[LookupKey(name, password)]
	if !ok {
		return Note{}, errors.New(errors.ErrCodeNotFound, "no note %q with that password", name)
	}
	return note, nil
}

// Delete removes the note for name and password.
func (v *Vault) Delete(ctx context.Context, name, password string) error {
	if err := validateName(name); err != nil {
		return err
	}
	notes, err := v.load(ctx)
	if err != nil {
		return err
	}
	key := LookupKey(name, password)
	if _, ok := notes[key]; !ok {
		return errors.New(errors.ErrCodeNotFound, "no note %q with that password", name)
	}
	delete(notes, key)
	return v.save(ctx, notes)
}

// List returns the note names, sorted. Names repeat when the same name is
// used with different passwords.
func (v *Vault) List(ctx context.Context) ([]string, error) {
	notes, err := v.load(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(notes))
	for _, n := range notes {
		names = append(names, n.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (v *Vault) load(ctx context.Context) (map[string]Note, error) {
	data, ok, err := v.store.Get(ctx, VaultKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "read vault")
	}
	observability.Store().OnStoreRead(ctx, VaultKey, ok)
	notes := map[string]Note{}
	if !ok || len(data) == 0 {
		return notes, nil
	}
	if err := json.Unmarshal(data, &notes); err != nil {
		v.logger.Warn("discarding unreadable vault", "error", err)
		observability.Store().OnStoreReset(ctx, VaultKey, err)
		return map[string]Note{}, nil
	}
	return notes, nil
}

func (v *Vault) save(ctx context.Context, notes map[string]Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	if err := v.store.Set(ctx, VaultKey, data); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "write vault")
	}
	observability.Store().OnStoreWrite(ctx, VaultKey, len(data))
	return nil
}
