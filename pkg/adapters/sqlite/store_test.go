package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/adapters/sqlite"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "histories.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStore_Contract(t *testing.T) {
	ports.RunHistoryStoreContract(t, openStore(t))
}

func TestSQLiteStore_DeleteCascadesCommands(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	h := &ports.History{
		DocumentID: "doc",
		Duration:   time.Minute,
		Done: []command.Envelope{
			{Parent: "Scenario", Name: "MoveConstraint", Payload: json.RawMessage(`{}`)},
			{Parent: "Scenario", Name: "MoveConstraint", Payload: json.RawMessage(`{}`)},
		},
	}
	require.NoError(t, store.Save(ctx, "doc", h))

	n, err := store.CountCommands(ctx, "MoveConstraint")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "doc"))
	n, err = store.CountCommands(ctx, "MoveConstraint")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_PreservesOrder(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	h := &ports.History{DocumentID: "doc"}
	for _, name := range []string{"c", "a", "b"} {
		h.Done = append(h.Done, command.Envelope{Parent: "Scenario", Name: name, Payload: json.RawMessage(`{}`)})
	}
	require.NoError(t, store.Save(ctx, "doc", h))

	loaded, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	names := []string{}
	for _, env := range loaded.Done {
		names = append(names, env.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)
}

func TestSQLiteStore_OpenRequiresPath(t *testing.T) {
	_, err := sqlite.Open("  ")
	assert.Error(t, err)
}
