package cadence

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/internal/metrics"
	"github.com/aretw0/cadence/internal/presentation/graph"
	"github.com/aretw0/cadence/internal/presentation/tui"
	httpAdapter "github.com/aretw0/cadence/pkg/adapters/http"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/aretw0/cadence/pkg/registry"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// Version is the release of the cadence module.
var Version = "0.1.0"

// Editor is the high-level entry point of the library. It wires the process
// and command registries, the session manager and metrics together.
type Editor struct {
	manager   *session.Manager
	processes *registry.Registry
	commands  *command.Registry
	metrics   *metrics.Collector

	registerer  prometheus.Registerer
	sessionOpts []session.Option
	extra       []domain.ProcessFactory
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithLocker enables distributed document locks.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, session.WithLocker(l), session.WithLockTTL(ttl))
	}
}

// WithObjectLocker replaces the in-process object locks used by gestures.
func WithObjectLocker(l ports.ObjectLocker) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, session.WithObjectLocker(l))
	}
}

// WithDocumentDuration sets the duration of documents created on first use.
func WithDocumentDuration(d time.Duration) Option {
	return func(e *Editor) {
		e.sessionOpts = append(e.sessionOpts, session.WithDocumentDuration(d))
	}
}

// WithMetrics registers the editor collectors on reg instead of the global
// registry.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Editor) {
		e.registerer = reg
	}
}

// WithProcess registers an additional process kind.
func WithProcess(f domain.ProcessFactory) Option {
	return func(e *Editor) {
		e.extra = append(e.extra, f)
	}
}

// New creates an Editor persisting histories in store.
func New(store ports.HistoryStore, opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	e.processes = process.NewRegistry()
	for _, f := range e.extra {
		e.processes.Register(f)
	}
	e.commands = commands.NewRegistry()

	m, err := metrics.New(e.registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	e.metrics = m

	sessionOpts := append([]session.Option{
		session.WithLogger(e.logger),
		session.WithStackHooks(m.Hooks()),
	}, e.sessionOpts...)
	e.manager = session.NewManager(store, e.processes, e.commands, sessionOpts...)
	return e, nil
}

func (e *Editor) Manager() *session.Manager { return e.manager }
func (e *Editor) Processes() *registry.Registry { return e.processes }
func (e *Editor) Commands() *command.Registry { return e.commands }
func (e *Editor) Metrics() *metrics.Collector { return e.metrics }

// Handler returns the HTTP surface over the editor's documents.
func (e *Editor) Handler() http.Handler {
	return httpAdapter.NewHandler(e.manager,
		httpAdapter.WithLogger(e.logger),
		httpAdapter.WithGatherer(e.metrics.Gatherer()),
	)
}

// Apply pushes a command built against the live document of docID.
func (e *Editor) Apply(ctx context.Context, docID string, build func(*domain.Document) (command.Command, error)) error {
	return e.manager.Do(ctx, docID, func(_ context.Context, s *session.Session) error {
		cmd, err := build(s.Document)
		if err != nil {
			return err
		}
		return s.Stack.Push(cmd)
	})
}

// Undo reverts the last command of docID.
func (e *Editor) Undo(ctx context.Context, docID string) error {
	return e.manager.Do(ctx, docID, func(_ context.Context, s *session.Session) error {
		return s.Stack.Undo()
	})
}

// Redo re-applies the last undone command of docID.
func (e *Editor) Redo(ctx context.Context, docID string) error {
	return e.manager.Do(ctx, docID, func(_ context.Context, s *session.Session) error {
		return s.Stack.Redo()
	})
}

// Summary describes the document as markdown.
func (e *Editor) Summary(ctx context.Context, docID string) (string, error) {
	var out string
	err := e.manager.View(ctx, docID, func(_ context.Context, s *session.Session) error {
		out = tui.Summary(s.Document, len(s.Stack.Done()), len(s.Stack.Undone()))
		return nil
	})
	return out, err
}

// Diagram renders the root scenario of the document as a Mermaid flowchart,
// highlighting the selected constraints.
func (e *Editor) Diagram(ctx context.Context, docID string, selected ...domain.ConstraintID) (string, error) {
	var out string
	err := e.manager.View(ctx, docID, func(_ context.Context, s *session.Session) error {
		var err error
		out, err = graph.GenerateMermaid(s.Document.Scenario(), &graph.Overlay{Selected: selected})
		return err
	})
	return out, err
}
