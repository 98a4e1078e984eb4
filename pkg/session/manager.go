package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed document lock survives a
// crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Session is a live document with its undo stack.
type Session struct {
	Document *domain.Document
	Stack    *command.Stack
}

// Manager orchestrates document access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store     ports.HistoryStore
	factories domain.Factories
	commands  *command.Registry

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	docsMu sync.Mutex
	docs   map[string]*Session

	objects  ports.ObjectLocker
	locker   ports.DistributedLocker // Optional distributed locker
	lockTTL  time.Duration
	duration time.Duration
	hooks    []command.Hooks
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed document locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithObjectLocker replaces the in-process object locks handed to gestures.
func WithObjectLocker(l ports.ObjectLocker) Option {
	return func(m *Manager) {
		m.objects = l
	}
}

// WithStackHooks observes the stack of every document the manager opens.
func WithStackHooks(h command.Hooks) Option {
	return func(m *Manager) {
		m.hooks = append(m.hooks, h)
	}
}

// WithDocumentDuration sets the duration of documents created on first use.
func WithDocumentDuration(d time.Duration) Option {
	return func(m *Manager) {
		m.duration = d
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager persisting histories in store. factories
// serves process creation and commands decodes stored histories.
func NewManager(store ports.HistoryStore, factories domain.Factories, commands *command.Registry, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		factories: factories,
		commands:  commands,
		locks:     make(map[string]*lockEntry),
		docs:      make(map[string]*Session),
		objects:   NewObjectLocks(),
		lockTTL:   DefaultLockTTL,
		duration:  domain.DefaultDocumentDuration,
		logger:    logging.NewNop(), // Default to no-op
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(docID) after unlocking.
func (m *Manager) acquire(docID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		entry = &lockEntry{}
		m.locks[docID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(docID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[docID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, docID)
	}
}

// WithLock executes a function while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, docID string, fn func(context.Context) error) error {
	entry := m.acquire(docID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(docID)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, docID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"doc_id", docID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Do runs fn on the document under its lock and saves the history when fn
// succeeds. When fn fails the live document is dropped, so the next access
// rebuilds it from the last saved history.
func (m *Manager) Do(ctx context.Context, docID string, fn func(context.Context, *Session) error) error {
	return m.WithLock(ctx, docID, func(ctx context.Context) error {
		s, err := m.load(ctx, docID, true)
		if err != nil {
			return err
		}
		if err := fn(ctx, s); err != nil {
			m.evict(docID)
			return err
		}
		if err := m.persist(ctx, docID, s); err != nil {
			m.evict(docID)
			return err
		}
		return nil
	})
}

// View runs fn on the document under its lock without saving anything. A
// document with no stored history is shown empty and is not kept in memory.
func (m *Manager) View(ctx context.Context, docID string, fn func(context.Context, *Session) error) error {
	return m.WithLock(ctx, docID, func(ctx context.Context) error {
		s, err := m.load(ctx, docID, false)
		if err != nil {
			return err
		}
		return fn(ctx, s)
	})
}

// Objects returns the object locker gestures must use.
func (m *Manager) Objects() ports.ObjectLocker {
	return m.objects
}

// History returns the stored history of a document.
func (m *Manager) History(ctx context.Context, docID string) (*ports.History, error) {
	var h *ports.History
	err := m.WithLock(ctx, docID, func(ctx context.Context) error {
		var err error
		h, err = m.store.Load(ctx, docID)
		return err
	})
	return h, err
}

// Delete removes the document from the store and from memory.
func (m *Manager) Delete(ctx context.Context, docID string) error {
	return m.WithLock(ctx, docID, func(ctx context.Context) error {
		m.evict(docID)
		return m.store.Delete(ctx, docID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying history store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}

// Commands returns the registry used to decode histories.
func (m *Manager) Commands() *command.Registry {
	return m.commands
}

func (m *Manager) evict(docID string) {
	m.docsMu.Lock()
	defer m.docsMu.Unlock()
	delete(m.docs, docID)
}

// load returns the live session of docID, rebuilding it from the store or
// creating an empty document. An empty document is cached only when create is
// set. The caller holds the document lock.
func (m *Manager) load(ctx context.Context, docID string, create bool) (*Session, error) {
	m.docsMu.Lock()
	s, ok := m.docs[docID]
	m.docsMu.Unlock()
	if ok {
		return s, nil
	}

	h, err := m.store.Load(ctx, docID)
	switch {
	case errors.Is(err, ports.ErrHistoryNotFound):
		s = m.newSession(docID, m.duration)
		if !create {
			return s, nil
		}
	case err != nil:
		return nil, fmt.Errorf("failed to load history: %w", err)
	default:
		s, err = m.replay(docID, h)
		if err != nil {
			return nil, err
		}
	}

	m.docsMu.Lock()
	m.docs[docID] = s
	m.docsMu.Unlock()
	return s, nil
}

func (m *Manager) newSession(docID string, duration time.Duration) *Session {
	doc := domain.NewDocument(docID, m.factories, duration)
	opts := []command.StackOption{command.WithStackLogger(m.logger.With("doc_id", docID))}
	for _, h := range m.hooks {
		opts = append(opts, command.WithHooks(h))
	}
	return &Session{Document: doc, Stack: command.NewStack(doc, opts...)}
}

// replay rebuilds a document by applying its done commands in order.
func (m *Manager) replay(docID string, h *ports.History) (*Session, error) {
	done, err := m.commands.DecodeAll(h.Done)
	if err != nil {
		return nil, fmt.Errorf("decode history of %s: %w", docID, err)
	}
	undone, err := m.commands.DecodeAll(h.Undone)
	if err != nil {
		return nil, fmt.Errorf("decode history of %s: %w", docID, err)
	}
	s := m.newSession(docID, h.Duration)
	if err := s.Stack.Restore(done, undone); err != nil {
		return nil, fmt.Errorf("replay %s: %w", docID, err)
	}
	m.logger.Debug("document replayed", "doc_id", docID, "done", len(done), "undone", len(undone))
	return s, nil
}

func (m *Manager) persist(ctx context.Context, docID string, s *Session) error {
	done, err := command.EncodeAll(s.Stack.Done())
	if err != nil {
		return err
	}
	undone, err := command.EncodeAll(s.Stack.Undone())
	if err != nil {
		return err
	}
	h := &ports.History{
		DocumentID: docID,
		Duration:   s.Document.Base().Durations.Default(),
		Done:       done,
		Undone:     undone,
		UpdatedAt:  m.now().UTC(),
	}
	if err := m.store.Save(ctx, docID, h); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
