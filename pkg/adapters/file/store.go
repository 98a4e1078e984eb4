package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/cadence/pkg/ports"
)

// Store implements ports.HistoryStore using the local filesystem.
// It stores histories as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".cadence/histories".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".cadence", "histories")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(docID string) (string, error) {
	if docID == "" {
		return "", fmt.Errorf("docID cannot be empty")
	}
	if strings.ContainsAny(docID, `/\`) || docID == "." || docID == ".." {
		return "", fmt.Errorf("invalid docID %q", docID)
	}
	return filepath.Join(s.BasePath, docID+".json"), nil
}

// Save persists the history to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, docID string, h *ports.History) error {
	destPath, err := s.path(docID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure history directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	// Same directory as the destination, rename is only atomic within one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+docID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // No-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing history file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to history: %w", err)
	}
	return nil
}

// Load retrieves the history from a JSON file.
func (s *Store) Load(ctx context.Context, docID string) (*ports.History, error) {
	filePath, err := s.path(docID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ports.ErrHistoryNotFound
		}
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var h ports.History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	return &h, nil
}

// Delete removes the history file.
func (s *Store) Delete(ctx context.Context, docID string) error {
	filePath, err := s.path(docID)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete history file: %w", err)
	}
	return nil
}

// List returns all stored document IDs.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list histories: %w", err)
	}

	var docs []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		docs = append(docs, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(docs)
	return docs, nil
}
