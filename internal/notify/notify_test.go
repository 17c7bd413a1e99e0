package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce-mgmt/pkg/activity"
)

// fakeTelegram answers getMe and sendMessage like the Bot API and records sent texts.
type fakeTelegram struct {
	mu    sync.Mutex
	sent  []sentMessage
	token string
}

type sentMessage struct {
	chatID string
	text   string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/bot"+f.token+"/") {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "error_code": 401, "description": "Unauthorized"})
		return
	}
	_ = r.ParseForm()
	method := strings.TrimPrefix(r.URL.Path, "/bot"+f.token+"/")
	var result any
	switch method {
	case "getMe":
		result = map[string]any{"id": 1, "is_bot": true, "first_name": "workforce", "username": "workforce_bot"}
	case "sendMessage":
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{chatID: r.FormValue("chat_id"), text: r.FormValue("text")})
		f.mu.Unlock()
		result = map[string]any{"message_id": 1, "date": 0, "chat": map[string]any{"id": -100, "type": "group"}, "text": r.FormValue("text")}
	default:
		result = true
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func (f *fakeTelegram) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func TestTelegramNotifier(t *testing.T) {
	fake := &fakeTelegram{token: "123:abc"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	n, err := NewTelegramNotifierWithEndpoint("123:abc", srv.URL+"/bot%s/%s", -100, srv.Client(), lgr.NoOp)
	require.NoError(t, err)

	e := activity.NewEvent(activity.TaskOverdue, "sweeper", 42, map[string]any{"assignee_id": int64(7)})
	require.NoError(t, n.Notify(context.Background(), e))

	sent := fake.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "-100", sent[0].chatID)
	assert.Equal(t, "Task 42 is overdue, assignee_id=7", sent[0].text)
}

func TestTelegramNotifierBadToken(t *testing.T) {
	srv := httptest.NewServer(&fakeTelegram{token: "good"})
	defer srv.Close()

	_, err := NewTelegramNotifierWithEndpoint("bad", srv.URL+"/bot%s/%s", 1, srv.Client(), lgr.NoOp)
	assert.Error(t, err)
}

func TestFormatEvent(t *testing.T) {
	e := activity.NewEvent(activity.TaskPriorityChanged, "workforce", 5, map[string]any{"from": "LOW", "to": "HIGH"})
	assert.Equal(t, "Task 5 priority changed, from=LOW, to=HIGH", FormatEvent(e))

	e = activity.NewEvent("custom.thing", "x", 9, nil)
	assert.Equal(t, "custom.thing (task 9)", FormatEvent(e))
}

type recorder struct {
	mu     sync.Mutex
	events []activity.Event
	fail   bool
}

func (r *recorder) Notify(_ context.Context, e activity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestRelayFiltersTypes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	bus := activity.NewBus(activity.NewMemLog(10))
	rec := &recorder{fail: true}

	done := make(chan struct{})
	go func() {
		Relay(ctx, bus, rec, []string{activity.TaskOverdue}, lgr.NoOp)
		close(done)
	}()

	// wait for the relay to subscribe
	require.Eventually(t, func() bool {
		_, _ = bus.Append(ctx, activity.TaskCreated, "test", 1, nil)
		_, _ = bus.Append(ctx, activity.TaskOverdue, "test", 1, nil)
		return len(rec.types()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	for _, typ := range rec.types() {
		assert.Equal(t, activity.TaskOverdue, typ)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestLogNotifier(t *testing.T) {
	var got string
	n := NewLogNotifier(lgr.Func(func(format string, args ...any) {
		got = format
		if len(args) > 0 {
			got = args[0].(string)
		}
	}))
	require.NoError(t, n.Notify(context.Background(), activity.NewEvent(activity.CommentAdded, "workforce", 3, nil)))
	assert.Equal(t, "New comment on task 3", got)
}
