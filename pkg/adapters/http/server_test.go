package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/cadence/pkg/adapters/memory"
	"github.com/aretw0/cadence/pkg/command"
	"github.com/aretw0/cadence/pkg/commands"
	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	"github.com/aretw0/cadence/pkg/process"
	"github.com/aretw0/cadence/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	mgr := session.NewManager(memory.NewStore(), process.NewRegistry(), commands.NewRegistry())
	srv := NewServer(mgr, WithGatherer(prometheus.NewRegistry()))
	return srv, srv.Routes()
}

// createEventEnvelope builds the command on a scratch document; ids are
// deterministic so it applies to any fresh document.
func createEventEnvelope(t *testing.T) command.Envelope {
	t.Helper()
	doc := domain.NewDocument("scratch", process.NewRegistry(), 0)
	cmd, err := commands.NewCreateEventAfterEvent(doc, domain.RootScenarioPath(), doc.Scenario().StartEvent(), 10*time.Second, 0.4)
	require.NoError(t, err)
	env, err := command.Encode(cmd)
	require.NoError(t, err)
	return env
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) StackState {
	t.Helper()
	var st StackState
	require.NoError(t, json.NewDecoder(w.Body).Decode(&st))
	return st
}

func TestPostCommand_UndoRedo(t *testing.T) {
	_, h := newTestServer(t)
	env := createEventEnvelope(t)

	w := do(t, h, http.MethodPost, "/documents/doc1/commands", env)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, StackState{Done: 1}, decodeState(t, w))

	w = do(t, h, http.MethodGet, "/documents/doc1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist ports.History
	require.NoError(t, json.NewDecoder(w.Body).Decode(&hist))
	require.Len(t, hist.Done, 1)
	assert.Equal(t, "CreateEventAfterEvent", hist.Done[0].Name)

	w = do(t, h, http.MethodPost, "/documents/doc1/undo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StackState{Undone: 1}, decodeState(t, w))

	w = do(t, h, http.MethodPost, "/documents/doc1/redo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StackState{Done: 1}, decodeState(t, w))
}

func TestGetDocument(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/documents/doc1/commands", createEventEnvelope(t))

	w := do(t, h, http.MethodGet, "/documents/doc1/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data domain.ConstraintData
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	assert.Equal(t, domain.BaseConstraintID, data.ID)
	require.Len(t, data.Processes, 1)
	assert.Equal(t, domain.ScenarioKind, data.Processes[0].Kind)
	assert.Contains(t, string(data.Processes[0].Payload), `"constraints":[{`)
}

func TestErrors(t *testing.T) {
	_, h := newTestServer(t)

	t.Run("unknown command", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/documents/doc1/commands", command.Envelope{Parent: "Scenario", Name: "Nope", Payload: json.RawMessage(`{}`)})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/doc1/commands", strings.NewReader("{"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("nothing to undo", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/documents/doc1/undo", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing history", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/documents/ghost/history", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing target", func(t *testing.T) {
		env := createEventEnvelope(t)
		env.Payload = json.RawMessage(strings.Replace(string(env.Payload), `"source":1`, `"source":42`, 1))
		w := do(t, h, http.MethodPost, "/documents/doc2/commands", env)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	})
}

func TestHealthAndCORS(t *testing.T) {
	_, h := newTestServer(t)

	w := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodOptions, "/documents/doc1/commands", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "cadence_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	mgr := session.NewManager(memory.NewStore(), process.NewRegistry(), commands.NewRegistry())
	h := NewHandler(mgr, WithGatherer(reg))

	w := do(t, h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cadence_test_total 1")
}

func TestSubscribeEvents(t *testing.T) {
	srv, h := newTestServer(t)
	ts := httptest.NewServer(h)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/documents/doc1/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	require.True(t, lines.Scan())
	assert.Equal(t, "event: ping", lines.Text())

	require.Eventually(t, func() bool {
		return srv.Streams.Subscribers("doc1") == 1
	}, time.Second, 10*time.Millisecond)

	w := do(t, h, http.MethodPost, "/documents/doc1/commands", createEventEnvelope(t))
	require.Equal(t, http.StatusOK, w.Code)

	var got Event
	for lines.Scan() {
		if data, ok := strings.CutPrefix(lines.Text(), "data: {"); ok {
			require.NoError(t, json.Unmarshal([]byte("{"+data), &got))
			break
		}
	}
	assert.Equal(t, "push", got.Op)
	require.NotNil(t, got.Command)
	assert.Equal(t, "CreateEventAfterEvent", got.Command.Name)
	assert.Equal(t, 1, got.Stack.Done)
}

func TestStreamManager_DropsWhenFull(t *testing.T) {
	sm := NewStreamManager()
	ch, cancel := sm.Subscribe("doc")
	defer cancel()

	for i := 0; i < 20; i++ {
		sm.Broadcast("doc", "msg")
	}
	assert.Len(t, ch, cap(ch))

	cancel()
	assert.Equal(t, 0, sm.Subscribers("doc"))
}
