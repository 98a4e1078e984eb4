package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/cadence/internal/logging"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/cadence/pkg/adapters/http"

// Documents is the session surface the server needs.
type Documents interface {
	Do(ctx context.Context, docID string, fn func(context.Context, *session.Session) error) error
	View(ctx context.Context, docID string, fn func(context.Context, *session.Session) error) error
	History(ctx context.Context, docID string) (*ports.History, error)
	Commands() *command.Registry
}

// Server exposes documents over HTTP so that several clients can edit them.
type Server struct {
	Docs     Documents
	Streams  *StreamManager
	gatherer prometheus.Gatherer
	tracer   trace.Tracer
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithGatherer serves the given metrics on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server over docs.
func NewServer(docs Documents, opts ...Option) *Server {
	s := &Server{
		Docs:     docs,
		Streams:  NewStreamManager(),
		gatherer: prometheus.DefaultGatherer,
		tracer:   otel.Tracer(tracerName),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for docs.
func NewHandler(docs Documents, opts ...Option) http.Handler {
	return NewServer(docs, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/documents/{id}", func(r chi.Router) {
		r.Get("/", s.GetDocument)
		r.Get("/history", s.GetHistory)
		r.Get("/events", s.SubscribeEvents)
		r.Post("/commands", s.PostCommand)
		r.Post("/undo", s.PostUndo)
		r.Post("/redo", s.PostRedo)
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StackState is returned by every mutating endpoint.
type StackState struct {
	Done   int `json:"done"`
	Undone int `json:"undone"`
}

// Event is what SSE subscribers of a document receive.
type Event struct {
	Op      string            `json:"op"`
	Command *command.Envelope `json:"command,omitempty"`
	Stack   StackState        `json:"stack"`
}

func stackState(st *command.Stack) StackState {
	return StackState{Done: len(st.Done()), Undone: len(st.Undone())}
}

func (s *Server) span(r *http.Request, name string) (context.Context, trace.Span, string) {
	id := chi.URLParam(r, "id")
	ctx, span := s.tracer.Start(r.Context(), name, trace.WithAttributes(attribute.String("cadence.doc_id", id)))
	return ctx, span, id
}

func (s *Server) fail(w http.ResponseWriter, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()}, s.logger)
}

func statusOf(err error) int {
	var decodeErr *command.DecodeError
	switch {
	case errors.Is(err, command.ErrUnknownCommand), errors.As(err, &decodeErr):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrHistoryNotFound):
		return http.StatusNotFound
	case errors.Is(err, command.ErrNothingToUndo), errors.Is(err, command.ErrNothingToRedo),
		errors.Is(err, ports.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrDuplicateID), errors.Is(err, domain.ErrFactoryNotFound),
		errors.Is(err, domain.ErrStructural), errors.Is(err, commands.ErrProtected):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, s.logger)
}

// GetDocument handles GET /documents/{id}: the base constraint with the whole
// scenario tree.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	ctx, span, id := s.span(r, "GetDocument")
	defer span.End()

	var data domain.ConstraintData
	err := s.Docs.View(ctx, id, func(_ context.Context, sess *session.Session) error {
		var err error
		data, err = domain.SnapshotConstraint(sess.Document.Base())
		return err
	})
	if err != nil {
		s.fail(w, span, "GetDocument", err)
		return
	}
	writeJSON(w, http.StatusOK, data, s.logger)
}

// GetHistory handles GET /documents/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, id := s.span(r, "GetHistory")
	defer span.End()

	h, err := s.Docs.History(ctx, id)
	if err != nil {
		s.fail(w, span, "GetHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, h, s.logger)
}

// PostCommand handles POST /documents/{id}/commands. The body is a command
// envelope; the command is applied and pushed on the document stack.
func (s *Server) PostCommand(w http.ResponseWriter, r *http.Request) {
	ctx, span, id := s.span(r, "PostCommand")
	defer span.End()

	var env command.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		s.fail(w, span, "PostCommand", &command.DecodeError{Err: fmt.Errorf("invalid request body: %w", err)})
		return
	}
	span.SetAttributes(attribute.String("cadence.command", env.Key().String()))

	cmd, err := s.Docs.Commands().Decode(env)
	if err != nil {
		s.fail(w, span, "PostCommand", err)
		return
	}
	var state StackState
	err = s.Docs.Do(ctx, id, func(_ context.Context, sess *session.Session) error {
		if err := sess.Stack.Push(cmd); err != nil {
			return err
		}
		state = stackState(sess.Stack)
		return nil
	})
	if err != nil {
		s.fail(w, span, "PostCommand", err)
		return
	}
	s.broadcast(id, Event{Op: "push", Command: &env, Stack: state})
	writeJSON(w, http.StatusOK, state, s.logger)
}

// PostUndo handles POST /documents/{id}/undo.
func (s *Server) PostUndo(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, "undo", (*command.Stack).Undo)
}

// PostRedo handles POST /documents/{id}/redo.
func (s *Server) PostRedo(w http.ResponseWriter, r *http.Request) {
	s.move(w, r, "redo", (*command.Stack).Redo)
}

func (s *Server) move(w http.ResponseWriter, r *http.Request, op string, fn func(*command.Stack) error) {
	ctx, span, id := s.span(r, "Post"+op)
	defer span.End()

	var state StackState
	err := s.Docs.Do(ctx, id, func(_ context.Context, sess *session.Session) error {
		if err := fn(sess.Stack); err != nil {
			return err
		}
		state = stackState(sess.Stack)
		return nil
	})
	if err != nil {
		s.fail(w, span, op, err)
		return
	}
	s.broadcast(id, Event{Op: op, Stack: state})
	writeJSON(w, http.StatusOK, state, s.logger)
}

func (s *Server) broadcast(docID string, ev Event) {
	b, err := json.Marshal(ev)
	if err != nil {
		s.logger.Error("event encode failed", "err", err)
		return
	}
	s.Streams.Broadcast(docID, string(b))
}
