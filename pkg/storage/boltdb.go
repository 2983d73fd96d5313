package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketRuns = []byte("runs")
)

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the journal database at path
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	// another burrow run holds the file lock while it records its run
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketRuns, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// NewRun starts a run record. Ids are time ordered, so the journal
// iterates runs in the order they started.
func NewRun(command, host string, checkMode bool) *types.Run {
	return &types.Run{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Command:   command,
		Host:      host,
		CheckMode: checkMode,
		StartedAt: time.Now().UTC(),
	}
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) CreateRun(run *types.Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put([]byte(run.ID), data)
	})
}

func (s *BoltStore) GetRun(id string) (*types.Run, error) {
	var run types.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *BoltStore) ListRuns() ([]*types.Run, error) {
	var runs []*types.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		return b.ForEach(func(k, v []byte) error {
			var run types.Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("failed to decode run %s: %w", k, err)
			}
			runs = append(runs, &run)
			return nil
		})
	})
	return runs, err
}

func (s *BoltStore) UpdateRun(run *types.Run) error {
	return s.CreateRun(run) // Same as create (upsert)
}

func (s *BoltStore) DeleteRun(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		return b.Delete([]byte(id))
	})
}

func (s *BoltStore) PruneRuns(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	deleted := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		var keys [][]byte
		if err := b.ForEach(func(k, _ []byte) error {
			keys = append(keys, append([]byte(nil), k...))
			return nil
		}); err != nil {
			return err
		}
		for len(keys)-deleted > keep {
			if err := b.Delete(keys[deleted]); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
