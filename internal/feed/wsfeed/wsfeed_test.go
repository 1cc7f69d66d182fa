package wsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pulsefield/internal/feed"
)

func newServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(feed.Options{}); err == nil {
		t.Fatal("expected error without url")
	}
}

func TestRunDecodesMessages(t *testing.T) {
	srv := newServer(t, []string{
		`{"magnitude": 120}`,
		`not json`,
		`{"length":{"old":50,"new":10}}`,
		`{"type":"log"}`,
		`{"magnitude": -3}`,
	})
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	src, err := New(feed.Options{URL: url})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan feed.Event, 8)
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx, func(ev feed.Event) { events <- ev }) }()

	want := []float64{120, -40, -3}
	for i, w := range want {
		select {
		case ev := <-events:
			if ev.Magnitude != w {
				t.Errorf("event %d = %v, expected %v", i, ev.Magnitude, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, expected nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReconnectsAfterServerClose(t *testing.T) {
	upgrader := websocket.Upgrader{}
	var conns atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		n := conns.Add(1)
		_ = conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"magnitude": %d}`, n)))
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
		conn.Close()
	}))
	defer srv.Close()

	src, err := New(feed.Options{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	src.backoff = func() backoff.BackOff { return backoff.NewConstantBackOff(5 * time.Millisecond) }

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan feed.Event)
	done := make(chan error, 1)
	go func() {
		done <- src.Run(ctx, func(ev feed.Event) {
			select {
			case events <- ev:
			case <-ctx.Done():
			}
		})
	}()

	for i := 1; i <= 3; i++ {
		select {
		case ev := <-events:
			if ev.Magnitude != float64(i) {
				t.Errorf("event from connection %d = %v", i, ev.Magnitude)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for connection %d", i)
		}
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, expected nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunCancelledWhileDialFails(t *testing.T) {
	src, err := New(feed.Options{URL: "ws://127.0.0.1:1/none"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := src.Run(ctx, func(feed.Event) {}); err != nil {
		t.Errorf("Run() = %v, expected nil after ctx ends", err)
	}
}
