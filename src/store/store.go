package store

import (
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/segin/webchess-sub002/src/logic/convert/convjson"
)

// Storage keys
const keyGamePrefix = "game:"

// ErrNotFound reports a lookup for an id that was never saved or has
// been deleted.
var ErrNotFound = errors.New("store: game not found")

// SavedGame is one persisted game: the full snapshot plus bookkeeping.
type SavedGame struct {
	ID        string            `json:"id"`
	Name      string            `json:"name,omitempty"`
	State     convjson.Snapshot `json:"state"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// GameInfo is the listing row for one saved game.
type GameInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Status    string    `json:"status"`
	Turn      string    `json:"turn"`
	Moves     int       `json:"moves"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps BadgerDB for persistent game storage.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the database under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway database that never touches disk.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte { return []byte(keyGamePrefix + id) }

// Save writes rec under its id, stamping the bookkeeping times.
func (s *Store) Save(rec *SavedGame) error {
	if rec.ID == "" {
		return errors.New("store: empty game id")
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(rec.ID), data)
	})
}

// Load reads one saved game, ErrNotFound when the id is unknown.
func (s *Store) Load(id string) (*SavedGame, error) {
	var rec SavedGame
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes one saved game, ErrNotFound when the id is unknown.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(gameKey(id)); err == badger.ErrKeyNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(gameKey(id))
	})
}

// List summarizes every saved game, most recently updated first.
func (s *Store) List() ([]GameInfo, error) {
	var infos []GameInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyGamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec SavedGame
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				infos = append(infos, infoOf(&rec))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos, nil
}

func infoOf(rec *SavedGame) GameInfo {
	return GameInfo{
		ID:        rec.ID,
		Name:      rec.Name,
		Status:    rec.State.Status,
		Turn:      rec.State.Turn,
		Moves:     len(rec.State.History),
		UpdatedAt: rec.UpdatedAt,
	}
}
