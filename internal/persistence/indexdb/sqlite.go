package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/tuning"
)

// SQLiteIndex is a queryable read model of the decision log. The JSONL logs
// remain the source of truth: writes are queued and dropped when the writer
// falls behind.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	// mu orders sends on ch against close(ch).
	mu     sync.RWMutex
	closed bool

	dropDecisionTotal atomic.Uint64
	dropSessionTotal  atomic.Uint64
}

type reqKind int

const (
	reqDecision reqKind = iota + 1
	reqSession
)

type req struct {
	kind reqKind

	decision session.Decision
	session  sessionRow
}

type sessionRow struct {
	ID         string
	ClientName string
	At         string
	Closing    bool
}

type Stats struct {
	QueueDepth        int    `json:"queue_depth"`
	QueueCapacity     int    `json:"queue_capacity"`
	DropDecisionTotal uint64 `json:"drop_decision_total"`
	DropSessionTotal  uint64 `json:"drop_session_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			opened_at TEXT NOT NULL,
			closed_at TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			x INTEGER,
			y INTEGER,
			plane INTEGER,
			item INTEGER NOT NULL,
			shop_id TEXT,
			outcome TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_id, id);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_kind ON decisions(kind, id);`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_pos ON decisions(x, y, plane);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropDecisionTotal: s.dropDecisionTotal.Load(),
		DropSessionTotal:  s.dropSessionTotal.Load(),
	}
}

// WriteDecision implements session.DecisionSink. It never blocks.
func (s *SQLiteIndex) WriteDecision(d session.Decision) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil
	}
	select {
	case s.ch <- req{kind: reqDecision, decision: d}:
	default:
		s.dropDecisionTotal.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSessionOpened(id, clientName string, at time.Time) {
	s.recordSession(sessionRow{ID: id, ClientName: clientName, At: at.UTC().Format(time.RFC3339Nano)})
}

func (s *SQLiteIndex) RecordSessionClosed(id string, at time.Time) {
	s.recordSession(sessionRow{ID: id, At: at.UTC().Format(time.RFC3339Nano), Closing: true})
}

func (s *SQLiteIndex) recordSession(r sessionRow) {
	if s == nil || r.ID == "" {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- req{kind: reqSession, session: r}:
	default:
		s.dropSessionTotal.Add(1)
	}
}

// UpsertCatalogs stores the seed data and tuning actually applied, keyed by
// name with their digests.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil || cats == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	add := func(name, digest string, v any) {
		b, err := json.Marshal(v)
		if err != nil || len(b) == 0 {
			return
		}
		if digest == "" {
			sum := sha256.Sum256(b)
			digest = hex.EncodeToString(sum[:])
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
	}
	add("items", cats.Items.Digest, cats.Items.Sorted())
	add("static_spawns", cats.StaticSpawns.Digest, cats.StaticSpawns.Spawns)
	add("shops", cats.Shops.Digest, cats.Shops.ByName)
	add("tuning", "", tune)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DecisionFilter narrows RecentDecisions. Zero values match everything.
type DecisionFilter struct {
	SessionID string
	Kind      string
	Limit     int
}

// RecentDecisions returns committed decisions, newest first.
func (s *SQLiteIndex) RecentDecisions(ctx context.Context, f DecisionFilter) ([]session.Decision, error) {
	if f.Limit <= 0 || f.Limit > 1000 {
		f.Limit = 100
	}
	q := `SELECT raw_json FROM decisions WHERE 1=1`
	var args []any
	if f.SessionID != "" {
		q += ` AND session_id = ?`
		args = append(args, f.SessionID)
	}
	if f.Kind != "" {
		q += ` AND kind = ?`
		args = append(args, f.Kind)
	}
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.Decision
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var d session.Decision
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertDecision, _ := s.db.Prepare(`INSERT INTO decisions(at,session_id,kind,x,y,plane,item,shop_id,outcome,raw_json) VALUES(?,?,?,?,?,?,?,?,?,?)`)
	openSession, _ := s.db.Prepare(`INSERT OR REPLACE INTO sessions(session_id,client_name,opened_at,closed_at) VALUES(?,?,?,NULL)`)
	closeSession, _ := s.db.Prepare(`UPDATE sessions SET closed_at = ? WHERE session_id = ?`)
	defer func() {
		for _, st := range []*sql.Stmt{insertDecision, openSession, closeSession} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 500
		commitMaxWait = time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	exec := func(st *sql.Stmt, args ...any) {
		if st == nil || tx == nil {
			return
		}
		if _, err := tx.Stmt(st).Exec(args...); err != nil {
			rollback()
			return
		}
		opCount++
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqDecision:
			d := r.decision
			raw, _ := json.Marshal(d)
			var x, y, plane any
			if d.Pos != nil {
				x, y, plane = d.Pos[0], d.Pos[1], d.Pos[2]
			}
			exec(insertDecision,
				d.Time.UTC().Format(time.RFC3339Nano),
				d.SessionID,
				d.Kind,
				x, y, plane,
				d.ItemID,
				d.ShopID,
				d.Outcome,
				string(raw),
			)
		case reqSession:
			se := r.session
			if se.Closing {
				exec(closeSession, se.At, se.ID)
			} else {
				exec(openSession, se.ID, se.ClientName, se.At)
			}
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
