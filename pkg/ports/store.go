package ports

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/cadence/pkg/command"
)

// ErrHistoryNotFound is returned when no history is stored for a document.
var ErrHistoryNotFound = errors.New("history not found")

// History is the persisted form of a document: the duration it was created
// with and its undo stack as envelopes.
type History struct {
	DocumentID string             `json:"document_id"`
	Duration   time.Duration      `json:"duration"`
	Done       []command.Envelope `json:"done"`
	Undone     []command.Envelope `json:"undone"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// HistoryStore defines the interface for persisting document histories.
type HistoryStore interface {
	// Save persists the history of a document, replacing any previous one.
	Save(ctx context.Context, docID string, h *History) error

	// Load retrieves the history of a document.
	// Returns ErrHistoryNotFound if the document has none.
	Load(ctx context.Context, docID string) (*History, error)

	// Delete removes the history of a document.
	Delete(ctx context.Context, docID string) error

	// List returns the ids of every stored document.
	List(ctx context.Context) ([]string, error)
}
