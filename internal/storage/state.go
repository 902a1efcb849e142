package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	badger "github.com/dgraph-io/badger/v4"

	"github.com/timesheets-app/timesheets/internal/model"
)

// ErrKeyNotFound is returned when a key is not found in the state store.
var ErrKeyNotFound = errors.New("key not found")

// IsErrKeyNotFound returns true if the error is a key not found error.
func IsErrKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, badger.ErrKeyNotFound)
}

// StateStore is a small badger key-value store for runtime state that has
// to survive between command invocations, such as the active timer.
type StateStore struct {
	db *badger.DB
}

// StateOptions configures the state store.
type StateOptions struct {
	// Dir is the badger directory. Empty string uses in-memory mode.
	Dir string
	// InMemory forces in-memory mode regardless of Dir.
	InMemory bool
}

// DefaultStateDir returns the default state directory under the XDG base directories.
func DefaultStateDir() string {
	return filepath.Join(xdg.StateHome, AppName, "state")
}

// OpenState opens or creates the state store.
func OpenState(opts StateOptions) (*StateStore, error) {
	var badgerOpts badger.Options

	if opts.InMemory || opts.Dir == "" {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Dir)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	return &StateStore{db: db}, nil
}

// Close closes the state store.
func (s *StateStore) Close() error {
	return s.db.Close()
}

// Get retrieves a value by key and unmarshals it into v.
func (s *StateStore) Get(key string, v model.Model) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, v); err != nil {
				return err
			}
			v.SetKey(key)
			return nil
		})
	})
}

// Set stores a record under its key.
func (s *StateStore) Set(v model.Model) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(v.GetKey()), data)
	})
}

// Delete removes a key.
func (s *StateStore) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// TimerStateRepo provides operations for the TimerState singleton.
type TimerStateRepo struct {
	store *StateStore
}

// NewTimerStateRepo creates a new timer state repository.
func NewTimerStateRepo(store *StateStore) *TimerStateRepo {
	return &TimerStateRepo{store: store}
}

// Load retrieves the timer state, idle when none was saved.
func (r *TimerStateRepo) Load() (*model.TimerState, error) {
	state := model.NewTimerState()
	if err := r.store.Get(model.KeyTimerState, state); err != nil {
		if IsErrKeyNotFound(err) {
			return state, nil
		}
		return nil, err
	}
	return state, nil
}

// Save persists the timer state.
func (r *TimerStateRepo) Save(state *model.TimerState) error {
	state.Key = model.KeyTimerState
	return r.store.Set(state)
}

// Clear removes the saved timer state.
func (r *TimerStateRepo) Clear() error {
	err := r.store.Delete(model.KeyTimerState)
	if IsErrKeyNotFound(err) {
		return nil
	}
	return err
}
