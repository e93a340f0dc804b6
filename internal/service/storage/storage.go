// Package storage implements the checkpoint store: a durable key-value
// store of thread snapshots keyed by thread id. Backends share one JSON
// record shape so a conversation can resume identically from any of them.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/StefanoGysin/voxy/internal/models"
)

// ThreadRecord is the serialized snapshot written once per turn: the full
// message history plus the last turn's context and cumulative stats.
type ThreadRecord struct {
	Info              *models.ThreadInfo  `json:"info"`
	Messages          []*schema.Message   `json:"messages"`
	MessageTimestamps []int64             `json:"message_timestamps"`
	Context           *models.Context     `json:"context,omitempty"`
	Stats             *models.ThreadStats `json:"stats"`
}

// Store is the checkpoint store contract. LoadThread returns (nil, nil)
// for an unknown thread id; first-turn conversations have no checkpoint.
// SaveThread must be all-or-nothing: a crash mid-write never leaves a
// partially updated record visible to the next load.
type Store interface {
	LoadThread(ctx context.Context, threadID string) (*ThreadRecord, error)
	SaveThread(ctx context.Context, record *ThreadRecord) error
	ListThreads(ctx context.Context) ([]*models.ThreadInfo, error)
	DeleteThread(ctx context.Context, threadID string) error
	Close() error
}

func encodeRecord(record *ThreadRecord) ([]byte, error) {
	if record == nil || record.Info == nil || record.Info.ID == "" {
		return nil, fmt.Errorf("storage: thread record requires an id")
	}
	if len(record.Messages) != len(record.MessageTimestamps) {
		return nil, fmt.Errorf("storage: thread %s messages and timestamps mismatch", record.Info.ID)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("storage: marshal thread %s: %w", record.Info.ID, err)
	}
	return data, nil
}

func decodeRecord(threadID string, data []byte) (*ThreadRecord, error) {
	var record ThreadRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("storage: unmarshal thread %s: %w", threadID, err)
	}
	if record.Info == nil {
		return nil, fmt.Errorf("storage: thread %s record has no info", threadID)
	}
	return &record, nil
}
