package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/tuning"
)

type memEvents struct {
	mu     sync.Mutex
	events []protocol.EventMsg
}

func (m *memEvents) WriteEvent(_ string, ev protocol.EventMsg) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memEvents) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn, v any) string {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v != nil {
		if err := json.Unmarshal(b, v); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
	}
	return base.Type
}

func event(kind string) protocol.EventMsg {
	return protocol.EventMsg{Type: protocol.TypeEvent, ProtocolVersion: protocol.Version, Kind: kind}
}

func TestServer_HandshakeEventsAndQueries(t *testing.T) {
	tune := tuning.Defaults()
	events := &memEvents{}
	s := NewServer(Options{
		Tuning: tune,
		Seeds:  session.NewSeeds(catalogs.Builtin(), tune),
		Events: events,
	}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, ClientName: "test"})
	var welcome protocol.WelcomeMsg
	if typ := recv(t, conn, &welcome); typ != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %s", typ)
	}
	if welcome.SessionID == "" || welcome.Catalogs.ItemsDigest == "" || !welcome.Filter.RemoveClickOptions {
		t.Fatalf("welcome: %+v", welcome)
	}

	ps := event(protocol.EventPlayerState)
	ps.Name, ps.AccountType, ps.Pos = "Iron Tester", session.AccountIronman, &[3]int{3300, 3300, 0}
	send(t, conn, ps)

	item := catalogs.ItemAirRune
	sp := event(protocol.EventItemSpawned)
	sp.Pos, sp.Item = &[3]int{3200, 3200, 0}, &item
	send(t, conn, sp)

	send(t, conn, protocol.QueryMsg{
		Type: protocol.TypeQuery, ProtocolVersion: protocol.Version,
		ReqID: "q1", Query: protocol.QueryCanAcquire, Pos: &[3]int{3200, 3200, 0}, Item: &item,
	})
	var res protocol.ResultMsg
	if typ := recv(t, conn, &res); typ != protocol.TypeResult {
		t.Fatalf("expected RESULT, got %s", typ)
	}
	if res.ReqID != "q1" || res.Allowed == nil || *res.Allowed || res.Ownership != "OTHER_PLAYER" {
		t.Fatalf("result: %+v", res)
	}

	send(t, conn, protocol.QueryMsg{Type: protocol.TypeQuery, ProtocolVersion: protocol.Version, ReqID: "q2", Query: "NOPE"})
	var errMsg protocol.ErrorMsg
	if typ := recv(t, conn, &errMsg); typ != protocol.TypeError {
		t.Fatalf("expected ERROR, got %s", typ)
	}
	if errMsg.Code != protocol.ErrUnknownQuery || errMsg.ReqID != "q2" {
		t.Fatalf("error: %+v", errMsg)
	}

	if n := events.Len(); n != 2 {
		t.Fatalf("event log: got %d want 2", n)
	}
	stats := s.SessionStats()
	if len(stats) != 1 || stats[0].SessionID != welcome.SessionID || stats[0].Ground.Items != 1 {
		t.Fatalf("session stats: %+v", stats)
	}
}

func TestServer_RejectsBadVersion(t *testing.T) {
	s := NewServer(Options{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: "0.1"})
	var errMsg protocol.ErrorMsg
	if typ := recv(t, conn, &errMsg); typ != protocol.TypeError || errMsg.Code != protocol.ErrProtoVersion {
		t.Fatalf("expected E_PROTO_VERSION, got %s %+v", typ, errMsg)
	}
	if s.ActiveSessions() != 0 {
		t.Fatalf("no session should be registered")
	}
}

func TestServer_SessionReleasedOnDisconnect(t *testing.T) {
	s := NewServer(Options{}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
	recv(t, conn, nil)
	if s.ActiveSessions() != 1 {
		t.Fatalf("expected one session")
	}
	_ = conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && s.ActiveSessions() != 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if s.ActiveSessions() != 0 {
		t.Fatalf("session not released")
	}
}

type memDecisions struct {
	mu  sync.Mutex
	out []session.Decision
}

func (m *memDecisions) WriteDecision(d session.Decision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.out = append(m.out, d)
	return nil
}

func (m *memDecisions) resets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, d := range m.out {
		if d.Kind == session.KindReset && d.Outcome == "ALL" {
			n++
		}
	}
	return n
}

type memSessions struct {
	mu     sync.Mutex
	closed []string
}

func (m *memSessions) RecordSessionOpened(string, string, time.Time) {}

func (m *memSessions) RecordSessionClosed(id string, _ time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = append(m.closed, id)
}

func TestServer_CloseReleasesLiveSessions(t *testing.T) {
	sink := &memDecisions{}
	rec := &memSessions{}
	s := NewServer(Options{Sink: sink, Sessions: rec}, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	var conns []*websocket.Conn
	for i := 0; i < 3; i++ {
		conn := dial(t, srv)
		defer conn.Close()
		send(t, conn, protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version})
		recv(t, conn, nil)
		conns = append(conns, conn)
	}
	if s.ActiveSessions() != 3 {
		t.Fatalf("expected 3 sessions, got %d", s.ActiveSessions())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Every handler has returned, so nothing writes to the sink after this.
	if s.ActiveSessions() != 0 {
		t.Fatalf("sessions left: %d", s.ActiveSessions())
	}
	if n := sink.resets(); n != 3 {
		t.Fatalf("reset decisions: got %d want 3", n)
	}
	rec.mu.Lock()
	closed := len(rec.closed)
	rec.mu.Unlock()
	if closed != 3 {
		t.Fatalf("closed session rows: got %d want 3", closed)
	}

	for _, conn := range conns {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		if _, _, err := conn.ReadMessage(); err == nil {
			t.Fatalf("expected closed connection")
		}
	}

	late := dial(t, srv)
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := late.ReadMessage(); err == nil {
		t.Fatalf("new connections should be refused after Close")
	}
}
