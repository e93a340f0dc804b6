package storage_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/models"
	"github.com/StefanoGysin/voxy/internal/service/storage"
)

func sampleRecord(threadID string) *storage.ThreadRecord {
	return &storage.ThreadRecord{
		Info: &models.ThreadInfo{
			ID:        threadID,
			UserID:    "u1",
			Title:     "Weather in Lisbon",
			CreatedAt: 1700000000000,
			UpdatedAt: 1700000060000,
		},
		Messages: []*schema.Message{
			{Role: schema.User, Content: "What's the weather in Lisbon?"},
			{
				Role: schema.Assistant,
				ToolCalls: []schema.ToolCall{
					{ID: "call-1", Function: schema.FunctionCall{Name: "get_weather", Arguments: `{"location":"Lisbon"}`}},
				},
			},
			{Role: schema.Tool, ToolCallID: "call-1", Content: "Sunny, 21°C"},
			{Role: schema.Assistant, Content: "It's sunny and 21°C in Lisbon."},
		},
		MessageTimestamps: []int64{1700000000000, 1700000010000, 1700000020000, 1700000030000},
		Context: &models.Context{
			Route:     models.RouteSupervisor,
			ToolsUsed: []string{"get_weather"},
		},
		Stats: &models.ThreadStats{Turns: 1, Requests: 2, PromptTokens: 180, CompletionTokens: 90, TotalTokens: 270},
	}
}

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, store storage.Store) {
	ctx := context.Background()

	missing, err := store.LoadThread(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	record := sampleRecord("t-1")
	require.NoError(t, store.SaveThread(ctx, record))

	loaded, err := store.LoadThread(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, record.Info, loaded.Info)
	assert.Equal(t, record.MessageTimestamps, loaded.MessageTimestamps)
	assert.Equal(t, record.Stats, loaded.Stats)
	assert.Equal(t, record.Context, loaded.Context)
	require.Len(t, loaded.Messages, 4)
	assert.Equal(t, "call-1", loaded.Messages[1].ToolCalls[0].ID)
	assert.Equal(t, "call-1", loaded.Messages[2].ToolCallID)

	// Overwrite replaces the whole snapshot.
	record.Info.Title = "Lisbon weather chat"
	record.Stats.Turns = 2
	require.NoError(t, store.SaveThread(ctx, record))
	loaded, err = store.LoadThread(ctx, "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon weather chat", loaded.Info.Title)
	assert.Equal(t, 2, loaded.Stats.Turns)

	require.NoError(t, store.SaveThread(ctx, sampleRecord("t-2")))
	infos, err := store.ListThreads(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 2)

	require.NoError(t, store.DeleteThread(ctx, "t-1"))
	gone, err := store.LoadThread(ctx, "t-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Deleting an unknown thread is not an error.
	require.NoError(t, store.DeleteThread(ctx, "never-existed"))
}

func runStoreValidation(t *testing.T, store storage.Store) {
	ctx := context.Background()

	require.Error(t, store.SaveThread(ctx, nil))
	require.Error(t, store.SaveThread(ctx, &storage.ThreadRecord{Info: &models.ThreadInfo{}}))

	mismatched := sampleRecord("t-bad")
	mismatched.MessageTimestamps = mismatched.MessageTimestamps[:2]
	require.Error(t, store.SaveThread(ctx, mismatched))
}

func TestMemoryStore(t *testing.T) {
	store := storage.NewMemoryStore()
	defer store.Close()

	runStoreContract(t, store)
	runStoreValidation(t, store)
}

func TestBoltStore(t *testing.T) {
	store, err := storage.OpenBoltStore(filepath.Join(t.TempDir(), "threads.db"))
	require.NoError(t, err)
	defer store.Close()

	runStoreContract(t, store)
	runStoreValidation(t, store)
}

func TestBoltStoreReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "threads.db")
	ctx := context.Background()

	store, err := storage.OpenBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveThread(ctx, sampleRecord("t-1")))
	require.NoError(t, store.Close())

	reopened, err := storage.OpenBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.LoadThread(ctx, "t-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Weather in Lisbon", loaded.Info.Title)
}
