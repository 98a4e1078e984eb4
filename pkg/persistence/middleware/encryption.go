package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/ports"
)

// sealedName marks the single envelope that carries an encrypted history.
const sealedName = "__encrypted__"

// ErrNotEncrypted is returned when a stored history lacks the sealed envelope.
var ErrNotEncrypted = errors.New("history is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new histories. It must be 32 bytes (AES-256).
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without rewriting stored histories.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.HistoryStore
	config EncryptionConfig
}

// NewEncryptionMiddleware seals the command envelopes of every saved history
// with AES-GCM. The document id, duration and update time stay readable so
// that listing and housekeeping work without the key.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("active key must be 32 bytes, got %d", len(config.ActiveKey))
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("fallback key %d must be 32 bytes, got %d", i, len(k))
		}
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &encryptionMiddleware{next: next, config: config}
	}, nil
}

type sealedStacks struct {
	Done   []command.Envelope `json:"done"`
	Undone []command.Envelope `json:"undone"`
}

func (m *encryptionMiddleware) Save(ctx context.Context, docID string, h *ports.History) error {
	plain, err := json.Marshal(sealedStacks{Done: h.Done, Undone: h.Undone})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	ciphertext, err := encrypt(plain, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt history: %w", err)
	}
	// []byte marshals as base64, which keeps the payload valid JSON.
	payload, err := json.Marshal(ciphertext)
	if err != nil {
		return err
	}

	envelope := &ports.History{
		DocumentID: h.DocumentID,
		Duration:   h.Duration,
		Done:       []command.Envelope{{Name: sealedName, Payload: payload}},
		UpdatedAt:  h.UpdatedAt,
	}
	return m.next.Save(ctx, docID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, docID string) (*ports.History, error) {
	envelope, err := m.next.Load(ctx, docID)
	if err != nil {
		return nil, err
	}
	if len(envelope.Done) != 1 || envelope.Done[0].Name != sealedName || len(envelope.Undone) != 0 {
		return nil, fmt.Errorf("load %s: %w", docID, ErrNotEncrypted)
	}

	var ciphertext []byte
	if err := json.Unmarshal(envelope.Done[0].Payload, &ciphertext); err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt history %s: %w", docID, err)
	}
	var stacks sealedStacks
	if err := json.Unmarshal(plain, &stacks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted history: %w", err)
	}

	return &ports.History{
		DocumentID: envelope.DocumentID,
		Duration:   envelope.Duration,
		Done:       stacks.Done,
		Undone:     stacks.Undone,
		UpdatedAt:  envelope.UpdatedAt,
	}, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, docID string) error {
	return m.next.Delete(ctx, docID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
