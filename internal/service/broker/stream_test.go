package broker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	applogger "TickPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return l
}

// pingCountingServer upgrades every connection and counts the control pings it
// receives until the client goes away.
func pingCountingServer(t *testing.T, pings *atomic.Int32) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		c.SetPingHandler(func(string) error {
			pings.Add(1)
			return nil
		})
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestPingLoopStopsOnSessionDone(t *testing.T) {
	var pings atomic.Int32
	srv := pingCountingServer(t, &pings)
	defer srv.Close()

	s := NewStream("", wsURL(srv), nil, time.Millisecond, 5*time.Millisecond, testLogger(t)).(*Stream)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	done := make(chan struct{})
	go s.pingLoop(context.Background(), done)

	deadline := time.Now().Add(2 * time.Second)
	for pings.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no ping observed")
		}
		time.Sleep(time.Millisecond)
	}

	close(done)
	time.Sleep(20 * time.Millisecond) // let any in-flight ping land
	base := pings.Load()
	time.Sleep(50 * time.Millisecond)
	if got := pings.Load(); got != base {
		t.Fatalf("ping loop kept running after done: %d -> %d", base, got)
	}
}

func TestReadSessionEndStopsPinger(t *testing.T) {
	var pings atomic.Int32
	srv := pingCountingServer(t, &pings)
	defer srv.Close()

	s := NewStream("", wsURL(srv), nil, time.Millisecond, 5*time.Millisecond, testLogger(t)).(*Stream)
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ticks, errs := s.Read(ctx)
	_ = s.Close() // ends the read session
	for range ticks {
	}
	for range errs {
	}

	// a fresh connection with no read session must receive no pings; a ping
	// here means the previous session's loop outlived it
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer s.Close()
	pings.Store(0)
	time.Sleep(50 * time.Millisecond)
	if got := pings.Load(); got != 0 {
		t.Fatalf("stale ping loop survived the read session: %d pings", got)
	}
}

func TestSubscribeSerializedWithPings(t *testing.T) {
	var pings atomic.Int32
	srv := pingCountingServer(t, &pings)
	defer srv.Close()

	s := NewStream("", wsURL(srv), []string{"MNQ"}, time.Millisecond, time.Millisecond, testLogger(t)).(*Stream)
	ctx := context.Background()
	if err := s.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	done := make(chan struct{})
	go s.pingLoop(ctx, done)
	defer close(done)

	// pings fire every millisecond; unserialized writes would trip the
	// connection's single-writer contract
	for i := 0; i < 200; i++ {
		if err := s.Subscribe(ctx); err != nil {
			t.Fatalf("subscribe: %v", err)
		}
	}
}
