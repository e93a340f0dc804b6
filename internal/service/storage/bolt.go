package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/StefanoGysin/voxy/internal/models"
)

const (
	threadBucket    = "threads"
	threadKeyPrefix = "thread:"
)

// BoltStore is the embedded file-based checkpoint backend. Each SaveThread
// runs in a single bbolt update transaction, so a checkpoint is either
// fully written or absent after a crash.
type BoltStore struct {
	db        *bolt.DB
	closeOnce sync.Once
}

// OpenBoltStore opens (creating if needed) the database file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("storage: create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(threadBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func threadKey(threadID string) []byte {
	return []byte(threadKeyPrefix + threadID)
}

func (s *BoltStore) LoadThread(_ context.Context, threadID string) (*ThreadRecord, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(threadBucket))
		if bucket == nil {
			return fmt.Errorf("storage: bucket %s not found", threadBucket)
		}
		if v := bucket.Get(threadKey(threadID)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decodeRecord(threadID, data)
}

func (s *BoltStore) SaveThread(_ context.Context, record *ThreadRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(threadBucket))
		if bucket == nil {
			return fmt.Errorf("storage: bucket %s not found", threadBucket)
		}
		return bucket.Put(threadKey(record.Info.ID), data)
	})
}

func (s *BoltStore) ListThreads(_ context.Context) ([]*models.ThreadInfo, error) {
	var infos []*models.ThreadInfo
	prefix := []byte(threadKeyPrefix)

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(threadBucket))
		if bucket == nil {
			return fmt.Errorf("storage: bucket %s not found", threadBucket)
		}
		cursor := bucket.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			record, err := decodeRecord(string(bytes.TrimPrefix(k, prefix)), v)
			if err != nil {
				return err
			}
			infos = append(infos, record.Info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

func (s *BoltStore) DeleteThread(_ context.Context, threadID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(threadBucket))
		if bucket == nil {
			return fmt.Errorf("storage: bucket %s not found", threadBucket)
		}
		return bucket.Delete(threadKey(threadID))
	})
}

func (s *BoltStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.db != nil {
			err = s.db.Close()
		}
	})
	return err
}
