package ws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/tuning"
)

// EventLog receives every inbound event before it is applied.
type EventLog interface {
	WriteEvent(sessionID string, ev protocol.EventMsg) error
}

// Observer is told about connection lifecycle and per-message outcomes.
type Observer interface {
	SessionOpened()
	SessionClosed()
	ObserveEvent(kind string, err error)
	ObserveQuery(query, code string)
}

// SessionRecorder persists session open/close times.
type SessionRecorder interface {
	RecordSessionOpened(id, clientName string, at time.Time)
	RecordSessionClosed(id string, at time.Time)
}

type Options struct {
	Tuning tuning.Tuning
	Seeds  *session.Seeds
	Sink   session.DecisionSink

	Events   EventLog
	Observer Observer
	Sessions SessionRecorder

	// MaxSessions caps concurrent connections; 0 means unlimited.
	MaxSessions int
	Now         func() time.Time
}

type Server struct {
	opts Options
	log  *log.Logger

	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session.Session
	conns    map[*websocket.Conn]struct{}
	closing  bool
	handlers sync.WaitGroup
}

func NewServer(opts Options, logger *log.Logger) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tuning == (tuning.Tuning{}) {
		opts.Tuning = tuning.Defaults()
	}
	if opts.Seeds == nil {
		opts.Seeds = session.NewSeeds(nil, opts.Tuning)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		opts: opts,
		log:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // host link is local
		},
		sessions: map[string]*session.Session{},
		conns:    map[*websocket.Conn]struct{}{},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if s.opts.MaxSessions > 0 && s.ActiveSessions() >= s.opts.MaxSessions {
			http.Error(rw, "too many sessions", http.StatusServiceUnavailable)
			return
		}
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		if !s.track(conn) {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			_ = conn.Close()
			return
		}
		defer s.untrack(conn)

		sess, out := s.handshake(conn)
		if sess == nil {
			return
		}
		defer s.release(sess)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		send := func(v any) {
			b, err := json.Marshal(v)
			if err != nil {
				return
			}
			select {
			case out <- b:
			case <-ctx.Done():
			}
		}

		// Reader loop. Events and queries are handled in arrival order on
		// this goroutine, so each session has a single writer.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				send(protocol.NewError("", protocol.ErrProtoBadRequest, "invalid json"))
				continue
			}
			if base.ProtocolVersion != protocol.Version {
				send(protocol.NewError("", protocol.ErrProtoVersion, "bad protocol_version"))
				continue
			}
			switch base.Type {
			case protocol.TypeEvent:
				var ev protocol.EventMsg
				if err := json.Unmarshal(msg, &ev); err != nil {
					send(protocol.NewError("", protocol.ErrProtoBadRequest, "bad EVENT"))
					continue
				}
				s.handleEvent(sess, ev)
			case protocol.TypeQuery:
				var q protocol.QueryMsg
				if err := json.Unmarshal(msg, &q); err != nil {
					send(protocol.NewError("", protocol.ErrProtoBadRequest, "bad QUERY"))
					continue
				}
				res, errMsg := sess.Answer(q)
				if errMsg != nil {
					s.observeQuery(q.Query, errMsg.Code)
					send(errMsg)
					continue
				}
				s.observeQuery(q.Query, "")
				send(res)
			default:
				send(protocol.NewError("", protocol.ErrProtoBadRequest, "unexpected type "+base.Type))
			}
		}
	}
}

func (s *Server) handleEvent(sess *session.Session, ev protocol.EventMsg) {
	if s.opts.Events != nil {
		if err := s.opts.Events.WriteEvent(sess.ID(), ev); err != nil {
			s.log.Printf("session %s: event log: %v", sess.ID(), err)
		}
	}
	err := sess.Apply(ev)
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveEvent(ev.Kind, err)
	}
	if err != nil && !errors.Is(err, session.ErrSkipped) {
		s.log.Printf("session %s: apply %s: %v", sess.ID(), ev.Kind, err)
	}
}

func (s *Server) observeQuery(query, code string) {
	if s.opts.Observer != nil {
		s.opts.Observer.ObserveQuery(query, code)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (*session.Session, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return nil, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return nil, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.NewError("", protocol.ErrProtoVersion, "bad protocol_version"))
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return nil, nil
	}
	if hello.ClientName == "" {
		hello.ClientName = "host"
	}

	maxQ := hello.MaxQueue
	if maxQ <= 0 {
		maxQ = 16
	}
	if maxQ > 256 {
		maxQ = 256
	}
	out := make(chan []byte, maxQ)

	sess := session.New(session.Config{
		Tuning: s.opts.Tuning,
		Seeds:  s.opts.Seeds,
		Now:    s.opts.Now,
		Logger: s.log,
		Sink:   s.opts.Sink,
	})

	f := sess.Tuning().Filter
	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.ID(),
		Catalogs:        s.opts.Seeds.Digests,
		Filter: protocol.FilterToggles{
			HideGroundItems:    f.HideGroundItems,
			ShowOwnDrops:       f.ShowOwnDrops,
			ShowStaticSpawns:   f.ShowStaticSpawns,
			HideShopItems:      f.HideShopItems,
			ShowOriginalStock:  f.ShowOriginalStock,
			RemoveClickOptions: f.RemoveClickOptions,
		},
	}
	if err := writeJSON(conn, welcome); err != nil {
		return nil, nil
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()
	if s.opts.Observer != nil {
		s.opts.Observer.SessionOpened()
	}
	if s.opts.Sessions != nil {
		s.opts.Sessions.RecordSessionOpened(sess.ID(), hello.ClientName, s.opts.Now())
	}
	s.log.Printf("session %s opened (client=%s)", sess.ID(), hello.ClientName)
	return sess, out
}

func (s *Server) release(sess *session.Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID())
	s.mu.Unlock()

	sess.Close()
	if s.opts.Observer != nil {
		s.opts.Observer.SessionClosed()
	}
	if s.opts.Sessions != nil {
		s.opts.Sessions.RecordSessionClosed(sess.ID(), s.opts.Now())
	}
	s.log.Printf("session %s closed", sess.ID())
}

// track registers a live connection. It fails once Close has started.
func (s *Server) track(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.conns[conn] = struct{}{}
	s.handlers.Add(1)
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	_ = conn.Close()
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	s.handlers.Done()
}

// Close refuses new connections, closes the live ones and waits until every
// handler has released its session. http.Server.Shutdown does not wait for
// hijacked connections, so call this before closing any decision sink.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	for conn := range s.conns {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.handlers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SessionStats returns a snapshot of every connected session, ordered by id.
func (s *Server) SessionStats() []session.Stats {
	s.mu.RLock()
	list := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		list = append(list, sess)
	}
	s.mu.RUnlock()

	out := make([]session.Stats, 0, len(list))
	for _, sess := range list {
		out = append(out, sess.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
