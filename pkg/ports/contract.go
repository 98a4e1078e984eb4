package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory(id string) *History {
	return &History{
		DocumentID: id,
		Duration:   2 * time.Minute,
		Done: []command.Envelope{
			{Parent: "Scenario", Name: "CreateEventAfterEvent", Payload: json.RawMessage(`{"source":1}`)},
			{Parent: "Scenario", Name: "MoveConstraint", Payload: json.RawMessage(`{"constraint":1}`)},
		},
		Undone: []command.Envelope{
			{Parent: "Scenario", Name: "SetConstraintHeight", Payload: json.RawMessage(`{"new":0.3}`)},
		},
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	docID := "contract-test-doc-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		h := sampleHistory(docID)

		err := store.Save(ctx, docID, h)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, h.Duration, loaded.Duration)
		require.Len(t, loaded.Done, 2)
		require.Len(t, loaded.Undone, 1)
		assert.Equal(t, "MoveConstraint", loaded.Done[1].Name)
		assert.JSONEq(t, `{"constraint":1}`, string(loaded.Done[1].Payload))
		assert.True(t, h.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save Replaces", func(t *testing.T) {
		h := sampleHistory(docID)
		h.Undone = nil
		require.NoError(t, store.Save(ctx, docID, h))

		loaded, err := store.Load(ctx, docID)
		require.NoError(t, err)
		assert.Empty(t, loaded.Undone)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+docID)
		assert.ErrorIs(t, err, ErrHistoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, docID, sampleHistory(docID))
		require.NoError(t, err)

		err = store.Delete(ctx, docID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, docID)
		assert.ErrorIs(t, err, ErrHistoryNotFound, "Load after Delete should return ErrHistoryNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := docID + "-1"
		id2 := docID + "-2"
		_ = store.Save(ctx, id1, sampleHistory(id1))
		_ = store.Save(ctx, id2, sampleHistory(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		docs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, docs, id1)
		assert.Contains(t, docs, id2)
	})
}
