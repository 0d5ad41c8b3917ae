package push

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"linguacall/internal/domain/call"
	"linguacall/pkg/logger"
)

// wsTestServer accepts push-channel connections and hands them to the
// test for scripted delivery and transport-loss injection.
type wsTestServer struct {
	srv   *httptest.Server
	conns chan *websocket.Conn
}

func newWSTestServer(t *testing.T) *wsTestServer {
	t.Helper()
	s := &wsTestServer{conns: make(chan *websocket.Conn, 4)}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		s.conns <- conn
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *wsTestServer) url() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

func (s *wsTestServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-s.conns:
		return conn
	case <-time.After(2 * time.Second):
		t.Fatalf("no connection arrived")
		return nil
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", msg)
}

// recorder collects delivered updates.
type recorder struct {
	mu      sync.Mutex
	callIDs []string
}

func (r *recorder) HandleCallUpdate(callID string, updates call.Patch) {
	r.mu.Lock()
	r.callIDs = append(r.callIDs, callID)
	r.mu.Unlock()
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.callIDs)
}

func newTestPushClient(url string) *Client {
	return NewClient(url, 10*time.Millisecond, 40*time.Millisecond, logger.NewNop())
}

func TestDelivery_AllObserversInRegistrationOrder(t *testing.T) {
	server := newWSTestServer(t)
	client := newTestPushClient(server.url())

	var mu sync.Mutex
	var order []string
	client.Subscribe(ObserverFunc(func(callID string, updates call.Patch) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	}))
	client.Subscribe(ObserverFunc(func(callID string, updates call.Patch) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	}))

	if err := client.Connect(""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()

	conn := server.nextConn(t)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"call_update","callId":"1","updates":{"status":"active"}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, "both observers notified")
	mu.Lock()
	defer mu.Unlock()
	if order[0] != "first" || order[1] != "second" {
		t.Fatalf("registration order violated: %v", order)
	}
}

func TestConnect_Idempotent(t *testing.T) {
	server := newWSTestServer(t)
	client := newTestPushClient(server.url())

	if err := client.Connect("tok"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()
	server.nextConn(t)

	if err := client.Connect("tok"); err != nil {
		t.Fatalf("second connect must be a no-op, got %v", err)
	}
	select {
	case <-server.conns:
		t.Fatalf("second connect opened another channel")
	case <-time.After(100 * time.Millisecond):
	}
	if client.State() != StateConnected {
		t.Fatalf("expected connected, got %v", client.State())
	}
}

func TestReconnect_RefreshesOnceBeforeResuming(t *testing.T) {
	server := newWSTestServer(t)
	client := newTestPushClient(server.url())

	var refreshes atomic.Int32
	client.OnReconnect(func() { refreshes.Add(1) })

	var refreshesSeenAtDelivery atomic.Int32
	delivered := make(chan struct{}, 1)
	client.Subscribe(ObserverFunc(func(callID string, updates call.Patch) {
		refreshesSeenAtDelivery.Store(refreshes.Load())
		delivered <- struct{}{}
	}))

	if err := client.Connect(""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()

	first := server.nextConn(t)
	_ = first.Close() // transport loss

	second := server.nextConn(t)
	waitFor(t, func() bool { return client.State() == StateConnected }, "reconnected")
	waitFor(t, func() bool { return refreshes.Load() == 1 }, "refresh after reconnect")

	if err := second.WriteMessage(websocket.TextMessage, []byte(`{"type":"call_update","callId":"2","updates":{}}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatalf("event after reconnect not delivered")
	}

	if refreshes.Load() != 1 {
		t.Fatalf("expected exactly one refresh, got %d", refreshes.Load())
	}
	if refreshesSeenAtDelivery.Load() != 1 {
		t.Fatalf("delivery resumed before the refresh ran")
	}
}

func TestDisconnect_StopsDeliveryAndReconnection(t *testing.T) {
	server := newWSTestServer(t)
	client := newTestPushClient(server.url())

	rec := &recorder{}
	client.Subscribe(rec)

	if err := client.Connect(""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	conn := server.nextConn(t)

	client.Disconnect()
	if client.State() != StateDisconnected {
		t.Fatalf("expected disconnected, got %v", client.State())
	}

	// A write racing the teardown must never reach an observer.
	_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"call_update","callId":"3","updates":{}}`))
	time.Sleep(100 * time.Millisecond)
	if rec.count() != 0 {
		t.Fatalf("delivery after disconnect: %d events", rec.count())
	}

	// And no reconnection attempt follows.
	select {
	case <-server.conns:
		t.Fatalf("client reconnected after explicit disconnect")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDispatch_IgnoresMalformedAndUnknownEvents(t *testing.T) {
	server := newWSTestServer(t)
	client := newTestPushClient(server.url())

	rec := &recorder{}
	client.Subscribe(rec)

	if err := client.Connect(""); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Disconnect()
	conn := server.nextConn(t)

	for _, raw := range []string{
		`not json`,
		`{"type":"presence_update","callId":"9"}`,
		`{"type":"call_update","callId":"1","updates":{"status":"active"}}`,
	} {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(raw)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	waitFor(t, func() bool { return rec.count() == 1 }, "only the call_update delivered")
}
