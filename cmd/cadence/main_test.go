package main

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cadence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPlayInspectHistory(t *testing.T) {
	dir := t.TempDir()
	flags := []string{"--backend", "file", "--dir", dir}

	out, err := run(t, append([]string{"play", filepath.Join("testdata", "score.yaml"), "--plain"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# score")
	assert.Contains(t, out, "3 command(s) done")
	assert.Contains(t, out, "| 2 | 15s | 2 |")

	out, err = run(t, append([]string{"inspect", "score", "--plain"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "| 2 | 15s | 2 |", "replayed from the file store")

	out, err = run(t, append([]string{"inspect", "score", "--mermaid", "--select", "1"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "ev1 -- \"c1 15s\" --> ev2")
	assert.Contains(t, out, "linkStyle 0")

	out, err = run(t, append([]string{"history", "ls"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "- score")

	out, err = run(t, append([]string{"history", "show", "score"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "MoveEvent"`)

	out, err = run(t, append([]string{"history", "rm", "score"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed history 'score'")

	_, err = run(t, append([]string{"inspect", "score"}, flags...)...)
	assert.Error(t, err)
}

func TestPlaySQLite(t *testing.T) {
	db := filepath.Join(t.TempDir(), "h.db")
	t.Setenv("CADENCE_HISTORY_SQLITE", db)

	_, err := run(t, "play", filepath.Join("testdata", "score.yaml"), "--plain", "--backend", "sqlite", "--doc", "other")
	require.NoError(t, err)

	out, err := run(t, "history", "ls", "--backend", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "- other")
}

func TestInvalidFlags(t *testing.T) {
	_, err := run(t, "history", "ls", "--backend", "tape")
	assert.ErrorContains(t, err, "tape")

	_, err = run(t, "history", "ls", "--backend", "memory", "--log-level", "loud")
	assert.ErrorContains(t, err, "loud")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "cadence version "+cadence.Version+"\n", out)
}

func TestEncryptedHistory(t *testing.T) {
	dir := t.TempDir()
	flags := []string{"--backend", "file", "--dir", dir}
	t.Setenv("CADENCE_HISTORY_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32)))

	_, err := run(t, append([]string{"play", filepath.Join("testdata", "score.yaml"), "--plain"}, flags...)...)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "score.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "MoveEvent")

	out, err := run(t, append([]string{"history", "show", "score"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "MoveEvent"`)

	t.Setenv("CADENCE_HISTORY_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{2}, 32)))
	_, err = run(t, append([]string{"inspect", "score", "--plain"}, flags...)...)
	assert.ErrorContains(t, err, "decrypt")
}
