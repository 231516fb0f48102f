package http

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/eventable"
	"github.com/aretw0/eventable/pkg/adapters/memory"
	"github.com/aretw0/eventable/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type post struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func (p *post) ActionPublish(id int, title string) {
	p.ID = id
	p.Title = title
}

func (p *post) ActionFail() error {
	return errors.New("storage offline")
}

func newTestModel(t *testing.T, opts ...eventable.Option) (*post, *eventable.Model) {
	t.Helper()
	p := &post{}
	m, err := eventable.New(p, opts...)
	require.NoError(t, err)
	return p, m
}

func TestCallAction(t *testing.T) {
	p, m := newTestModel(t)
	handler := NewHandler(m)

	req := httptest.NewRequest("POST", "/actions/publish", strings.NewReader(`[42, "hello"]`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 42, p.ID)
	assert.Equal(t, "hello", p.Title)

	var resp CallResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "publish", resp.Action)
	assert.Nil(t, resp.Result)
}

func TestCallAction_Fallback(t *testing.T) {
	_, m := newTestModel(t, eventable.WithFallback(func(ctx context.Context, method string, params ...any) (any, error) {
		return map[string]any{"method": method, "params": len(params)}, nil
	}))
	handler := NewHandler(m)

	req := httptest.NewRequest("POST", "/actions/archive", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"action":"archive","result":{"method":"archive","params":0}}`, w.Body.String())
}

func TestCallAction_ErrorStatus(t *testing.T) {
	events := memory.New()
	events.Listen("beforePublish", func(ctx context.Context, ev domain.ModelEvent) error {
		if ev.Payload.(*post).Title == "" {
			return nil
		}
		return domain.ErrEventHalted
	})

	tests := []struct {
		name   string
		path   string
		body   string
		veto   bool
		status int
	}{
		{"unsupported", "/actions/archive", `[]`, false, http.StatusNotFound},
		{"argument mismatch", "/actions/publish", `["x", "y"]`, false, http.StatusBadRequest},
		{"bad body", "/actions/publish", `{"id": 1}`, false, http.StatusBadRequest},
		{"handler error", "/actions/fail", ``, false, http.StatusInternalServerError},
		{"halted", "/actions/publish", `[1, "again"]`, true, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []eventable.Option{eventable.WithNotifier(events)}
			if tt.veto {
				opts = append(opts, eventable.WithVeto())
			}
			p, m := newTestModel(t, opts...)
			p.Title = "published"

			w := httptest.NewRecorder()
			NewHandler(m).ServeHTTP(w, httptest.NewRequest("POST", tt.path, strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestListActions(t *testing.T) {
	_, m := newTestModel(t)
	w := httptest.NewRecorder()
	NewHandler(m).ServeHTTP(w, httptest.NewRequest("GET", "/actions", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `["actionFail","actionPublish"]`, w.Body.String())
}

func TestHealthAndInfo(t *testing.T) {
	_, m := newTestModel(t)
	handler := NewHandler(m)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/healthz", nil))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/info", nil))
	assert.Contains(t, w.Body.String(), "eventable-http")

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("OPTIONS", "/actions", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEventsDisabledWithoutStreams(t *testing.T) {
	_, m := newTestModel(t)
	w := httptest.NewRecorder()
	NewHandler(m).ServeHTTP(w, httptest.NewRequest("GET", "/events", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubscribeEvents(t *testing.T) {
	events := memory.New()
	streams := NewStreamManager(nil)
	events.ListenAll(streams.Listen)

	_, m := newTestModel(t, eventable.WithNotifier(events))
	srv := httptest.NewServer(NewHandler(m, WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", srv.URL+"/events?event=afterPublish", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	call, err := http.Post(srv.URL+"/actions/publish", "application/json", strings.NewReader(`[7, "streamed"]`))
	require.NoError(t, err)
	call.Body.Close()
	require.Equal(t, http.StatusOK, call.StatusCode)

	scanner := bufio.NewScanner(resp.Body)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if strings.HasPrefix(scanner.Text(), "data: {") {
			break
		}
	}

	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "event: ping")
	assert.Contains(t, out, "event: afterPublish")
	assert.NotContains(t, out, "beforePublish")
	assert.Contains(t, out, `"title":"streamed"`)
}

func TestStreamManager_DropsForSlowSubscribers(t *testing.T) {
	sm := NewStreamManager(nil)
	ch, cancel := sm.Subscribe()

	for i := 0; i < 20; i++ {
		require.NoError(t, sm.Listen(context.Background(), domain.ModelEvent{Name: fmt.Sprintf("e%d", i)}))
	}
	assert.Len(t, ch, 10)

	cancel()
	cancel()
	assert.Equal(t, 0, sm.Subscribers())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("wrap: %w", domain.ErrUnsupportedAction)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("other")))
}
