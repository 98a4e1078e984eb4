package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cadence/pkg/adapters/file"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunHistoryStoreContract(t, store)
}

func TestFileStore_ListSkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "doc", &ports.History{DocumentID: "doc"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-doc-123.json"), []byte("{"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0o755))

	docs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc"}, docs)
}

func TestFileStore_RejectsPathTraversal(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	err := store.Save(ctx, "../escape", &ports.History{})
	assert.Error(t, err)
	_, err = store.Load(ctx, "")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	docs, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}
