package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/adapter/logging"
	"gitlab.com/codearena.net/internal/core/services/reconcile"
	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

const waitFor = 2 * time.Second

// fakeServer speaks just enough Engine.IO/Socket.IO to drive the client.
type fakeServer struct {
	srv    *httptest.Server
	conns  chan *serverConn
	refuse bool
}

type serverConn struct {
	ws       *websocket.Conn
	received chan string
	mu       sync.Mutex
}

func (sc *serverConn) send(t *testing.T, frame string) {
	t.Helper()
	sc.mu.Lock()
	defer sc.mu.Unlock()
	require.NoError(t, sc.ws.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func (sc *serverConn) expect(t *testing.T, frame string) {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case got, ok := <-sc.received:
			require.True(t, ok, "connection closed while waiting for %s", frame)
			if got == frame {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", frame)
		}
	}
}

func newFakeServer(t *testing.T, refuse bool) *fakeServer {
	fs := &fakeServer{conns: make(chan *serverConn, 8), refuse: refuse}
	upgrader := websocket.Upgrader{}

	fs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
			http.Error(w, "bad transport", http.StatusBadRequest)
			return
		}
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sc := &serverConn{ws: ws, received: make(chan string, 64)}
		sc.send(t, `0{"sid":"abc","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`)

		_, msg, err := ws.ReadMessage()
		if err != nil || string(msg) != "40" {
			ws.Close()
			return
		}
		if fs.refuse {
			sc.send(t, `44{"message":"not allowed"}`)
			ws.Close()
			return
		}
		sc.send(t, `40{"sid":"def"}`)

		go func() {
			defer close(sc.received)
			for {
				_, msg, err := ws.ReadMessage()
				if err != nil {
					return
				}
				sc.received <- string(msg)
			}
		}()
		fs.conns <- sc
	}))
	t.Cleanup(fs.srv.Close)
	return fs
}

func (fs *fakeServer) next(t *testing.T) *serverConn {
	t.Helper()
	select {
	case sc := <-fs.conns:
		return sc
	case <-time.After(waitFor):
		t.Fatal("no connection arrived")
		return nil
	}
}

func newTestClient(t *testing.T, fs *fakeServer) *Client {
	c := NewClient(fs.srv.URL, logging.NewNopLogger(),
		WithReconnect(10*time.Millisecond, 50*time.Millisecond, 0),
		WithHandshakeTimeout(time.Second),
	)
	t.Cleanup(func() { _ = c.Dispose() })
	return c
}

func TestClient_Endpoint(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3002":        "ws://localhost:3002/socket.io/?EIO=4&transport=websocket",
		"https://example.com/":         "wss://example.com/socket.io/?EIO=4&transport=websocket",
		"ws://example.com/custom":      "ws://example.com/custom/?EIO=4&transport=websocket",
		"wss://example.com/socket.io/": "wss://example.com/socket.io/?EIO=4&transport=websocket",
	}
	for in, want := range cases {
		got, err := NewClient(in, logging.NewNopLogger()).Endpoint()
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := NewClient("ftp://example.com", logging.NewNopLogger()).Endpoint()
	assert.Error(t, err)
}

func TestClient_ConnectAndAuthenticate(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	require.NoError(t, c.Connect(context.Background()))
	assert.Equal(t, domain.ConnConnected, c.State())
	sc := fs.next(t)

	require.NoError(t, c.Authenticate("user-1"))
	sc.expect(t, `42["auth",{"userId":"user-1"}]`)
}

func TestClient_AuthenticateBeforeConnect(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	require.NoError(t, c.Authenticate("user-2"))
	require.NoError(t, c.Connect(context.Background()))

	fs.next(t).expect(t, `42["auth",{"userId":"user-2"}]`)
}

func TestClient_DeliversUpdatesInOrder(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	got := make(chan domain.UpdateEvent, 8)
	c.Subscribe(func(ev domain.UpdateEvent) { got <- ev })

	require.NoError(t, c.Connect(context.Background()))
	sc := fs.next(t)

	statuses := []domain.SubmissionStatus{domain.StatusPending, domain.StatusRunning, domain.StatusSuccess}
	for _, s := range statuses {
		sc.send(t, fmt.Sprintf(`42["submission_update",{"submissionId":"s1","data":{"status":%q}}]`, s))
	}

	for _, want := range statuses {
		select {
		case ev := <-got:
			assert.Equal(t, "s1", ev.SubmissionID)
			assert.Equal(t, want, ev.Data.Status)
		case <-time.After(waitFor):
			t.Fatalf("missing update %s", want)
		}
	}
}

func TestClient_AnswersPing(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	require.NoError(t, c.Connect(context.Background()))
	sc := fs.next(t)

	sc.send(t, "2")
	sc.expect(t, "3")
}

func TestClient_Unsubscribe(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	var mu sync.Mutex
	dropped := 0
	sub := c.Subscribe(func(domain.UpdateEvent) {
		mu.Lock()
		dropped++
		mu.Unlock()
	})
	kept := make(chan struct{}, 1)
	c.Subscribe(func(domain.UpdateEvent) { kept <- struct{}{} })

	c.Unsubscribe(sub)
	c.Unsubscribe(sub)

	require.NoError(t, c.Connect(context.Background()))
	fs.next(t).send(t, `42["submission_update",{"submissionId":"s1","data":{"status":"Running"}}]`)

	select {
	case <-kept:
	case <-time.After(waitFor):
		t.Fatal("kept subscriber not called")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, dropped)
}

func TestClient_ReconnectsAndReauthenticates(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	states := make(chan domain.ConnectionState, 16)
	c.OnStateChange(func(s domain.ConnectionState, _ error) { states <- s })

	require.NoError(t, c.Authenticate("user-3"))
	require.NoError(t, c.Connect(context.Background()))
	first := fs.next(t)
	first.expect(t, `42["auth",{"userId":"user-3"}]`)

	first.ws.Close()

	second := fs.next(t)
	second.expect(t, `42["auth",{"userId":"user-3"}]`)

	var seen []domain.ConnectionState
	deadline := time.After(waitFor)
	for len(seen) == 0 || seen[len(seen)-1] != domain.ConnConnected || len(seen) < 4 {
		select {
		case s := <-states:
			seen = append(seen, s)
		case <-deadline:
			t.Fatalf("state sequence incomplete: %v", seen)
		}
	}
	assert.Equal(t, []domain.ConnectionState{
		domain.ConnConnecting, domain.ConnConnected,
		domain.ConnDisconnected, domain.ConnConnecting, domain.ConnConnected,
	}, seen)
}

func TestClient_ConnectRefused(t *testing.T) {
	fs := newFakeServer(t, true)
	c := newTestClient(t, fs)

	var lastErr error
	c.OnStateChange(func(_ domain.ConnectionState, err error) {
		if err != nil {
			lastErr = err
		}
	})

	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "not allowed"))
	assert.Equal(t, domain.ConnDisconnected, c.State())
	assert.Error(t, lastErr)
}

func TestClient_SendMessageWhileDisconnected(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", logging.NewNopLogger())
	assert.ErrorIs(t, c.SendMessage(map[string]string{"hello": "world"}), errs.ErrNotConnected)
}

func TestClient_SendMessage(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	require.NoError(t, c.Connect(context.Background()))
	sc := fs.next(t)

	require.NoError(t, c.SendMessage(map[string]string{"hello": "world"}))
	sc.expect(t, `42["message",{"hello":"world"}]`)
}

func TestClient_Dispose(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	require.NoError(t, c.Connect(context.Background()))
	fs.next(t)

	require.NoError(t, c.Dispose())
	require.NoError(t, c.Dispose())

	assert.Equal(t, domain.ConnDisconnected, c.State())
	assert.ErrorIs(t, c.Connect(context.Background()), errs.ErrDisposed)
	assert.ErrorIs(t, c.Authenticate("user"), errs.ErrDisposed)

	select {
	case <-fs.conns:
		t.Fatal("disposed client reconnected")
	case <-time.After(100 * time.Millisecond):
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(domain.Notification) {}
func (discardNotifier) Dismiss(string)             {}

func TestClient_ViewSurvivesReconnect(t *testing.T) {
	fs := newFakeServer(t, false)
	c := newTestClient(t, fs)

	disconnected := make(chan struct{}, 4)
	c.OnStateChange(func(s domain.ConnectionState, _ error) {
		if s == domain.ConnDisconnected {
			disconnected <- struct{}{}
		}
	})

	r := reconcile.NewReconciler(logging.NewNopLogger(), discardNotifier{})
	require.NoError(t, r.Begin(&domain.Submission{ID: "s1", ProblemID: "p1"}))
	r.Attach(c)
	defer r.Detach()

	require.NoError(t, c.Authenticate("user-4"))
	require.NoError(t, c.Connect(context.Background()))
	first := fs.next(t)
	first.expect(t, `42["auth",{"userId":"user-4"}]`)

	first.send(t, `42["submission_update",{"submissionId":"s1","data":{"status":"Running","results":[{"output":"1","passed":true}]}}]`)
	require.Eventually(t, func() bool {
		return r.View().State == domain.ViewRunning
	}, waitFor, 10*time.Millisecond)

	first.ws.Close()
	select {
	case <-disconnected:
	case <-time.After(waitFor):
		t.Fatal("drop was not reported")
	}
	during := r.View()
	assert.Equal(t, domain.ViewRunning, during.State)
	require.Len(t, during.Outcomes, 1)
	assert.Equal(t, domain.OutcomePassed, during.Outcomes[0].State)

	second := fs.next(t)
	second.expect(t, `42["auth",{"userId":"user-4"}]`)
	second.send(t, `42["submission_update",{"submissionId":"s1","data":{"status":"Success","results":[{"output":"1","passed":true},{"output":"2","passed":true}]}}]`)

	require.Eventually(t, func() bool {
		return r.View().State == domain.ViewSuccess
	}, waitFor, 10*time.Millisecond)
	after := r.View()
	assert.Equal(t, domain.StatusSuccess, after.RawStatus)
	assert.Len(t, after.Outcomes, 2)
	require.NotNil(t, after.Score)
	assert.Equal(t, domain.Score{Passed: 2, Total: 2, Percentage: 100}, *after.Score)
}

func TestClient_DisposeWaitsForConnectInFlight(t *testing.T) {
	upgraded := make(chan struct{})
	release := make(chan struct{})
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		close(upgraded)
		<-release

		_ = ws.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"abc","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`))
		if _, msg, err := ws.ReadMessage(); err != nil || string(msg) != "40" {
			return
		}
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"def"}`))
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(unblock)

	c := NewClient(srv.URL, logging.NewNopLogger(), WithHandshakeTimeout(waitFor))
	connectErr := make(chan error, 1)
	go func() { connectErr <- c.Connect(context.Background()) }()

	select {
	case <-upgraded:
	case <-time.After(waitFor):
		t.Fatal("client never dialed")
	}

	disposed := make(chan struct{})
	go func() {
		_ = c.Dispose()
		close(disposed)
	}()
	select {
	case <-disposed:
		t.Fatal("Dispose returned while the handshake was still pending")
	case <-time.After(50 * time.Millisecond):
	}

	unblock()
	select {
	case err := <-connectErr:
		assert.ErrorIs(t, err, errs.ErrDisposed)
	case <-time.After(waitFor):
		t.Fatal("Connect did not return")
	}
	select {
	case <-disposed:
	case <-time.After(waitFor):
		t.Fatal("Dispose did not return")
	}
	assert.Equal(t, domain.ConnDisconnected, c.State())
}
