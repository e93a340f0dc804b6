package storage

import (
	"context"
	"sync"

	"github.com/StefanoGysin/voxy/internal/models"
)

// MemoryStore keeps checkpoints for the process lifetime only. Records are
// stored in serialized form so callers never share mutable state with the
// store, matching the durable backends' semantics.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

func (s *MemoryStore) LoadThread(_ context.Context, threadID string) (*ThreadRecord, error) {
	s.mu.RLock()
	data, ok := s.records[threadID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return decodeRecord(threadID, data)
}

func (s *MemoryStore) SaveThread(_ context.Context, record *ThreadRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[record.Info.ID] = data
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ListThreads(_ context.Context) ([]*models.ThreadInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]*models.ThreadInfo, 0, len(s.records))
	for id, data := range s.records {
		record, err := decodeRecord(id, data)
		if err != nil {
			return nil, err
		}
		infos = append(infos, record.Info)
	}
	return infos, nil
}

func (s *MemoryStore) DeleteThread(_ context.Context, threadID string) error {
	s.mu.Lock()
	delete(s.records, threadID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
