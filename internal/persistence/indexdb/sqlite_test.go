package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/tuning"
)

func TestSQLiteIndex_DecisionsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	idx.RecordSessionOpened("s1", "host", at)
	_ = idx.WriteDecision(session.Decision{Time: at, SessionID: "s1", Kind: session.KindGround, Pos: &[3]int{3200, 3200, 0}, ItemID: 556, Outcome: "OTHER_PLAYER"})
	_ = idx.WriteDecision(session.Decision{Time: at, SessionID: "s1", Kind: session.KindShop, ItemID: 1925, ShopID: "def:1", Outcome: "ORIGINAL"})
	_ = idx.WriteDecision(session.Decision{Time: at, SessionID: "s2", Kind: session.KindGround, ItemID: 1, Outcome: "STATIC_SPAWN"})
	idx.RecordSessionClosed("s1", at.Add(time.Minute))
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	got, err := idx.RecentDecisions(context.Background(), DecisionFilter{SessionID: "s1"})
	if err != nil {
		t.Fatalf("RecentDecisions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d decisions want 2", len(got))
	}
	if got[0].Kind != session.KindShop || got[0].ShopID != "def:1" {
		t.Fatalf("newest first: %+v", got[0])
	}
	if got[1].Pos == nil || got[1].Pos[0] != 3200 {
		t.Fatalf("pos lost: %+v", got[1])
	}

	got, err = idx.RecentDecisions(context.Background(), DecisionFilter{Kind: session.KindGround, Limit: 1})
	if err != nil || len(got) != 1 || got[0].SessionID != "s2" {
		t.Fatalf("kind filter: %+v %v", got, err)
	}

	var closed sql.NullString
	if err := idx.db.QueryRow(`SELECT closed_at FROM sessions WHERE session_id='s1'`).Scan(&closed); err != nil {
		t.Fatalf("session row: %v", err)
	}
	if !closed.Valid {
		t.Fatalf("session not closed")
	}
}

func TestSQLiteIndex_UpsertCatalogs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	cats := catalogs.Builtin()
	if err := idx.UpsertCatalogs(cats, tuning.Defaults()); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	var digest string
	if err := idx.db.QueryRow(`SELECT digest FROM catalogs WHERE name='items'`).Scan(&digest); err != nil {
		t.Fatalf("items row: %v", err)
	}
	if digest != cats.Items.Digest {
		t.Fatalf("digest: got %s want %s", digest, cats.Items.Digest)
	}
	var n int
	if err := idx.db.QueryRow(`SELECT COUNT(*) FROM catalogs`).Scan(&n); err != nil || n != 4 {
		t.Fatalf("catalog rows: %d %v", n, err)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqDecision}

	_ = s.WriteDecision(session.Decision{Kind: session.KindGround})
	s.RecordSessionOpened("s1", "host", time.Now())

	st := s.Stats()
	if st.DropDecisionTotal != 1 || st.DropSessionTotal != 1 {
		t.Fatalf("drops: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: %+v", st)
	}
}

func TestSQLiteIndex_WritesRacingClose(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}

	var wg sync.WaitGroup
	start := make(chan struct{})
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for i := 0; i < 2000; i++ {
				_ = idx.WriteDecision(session.Decision{SessionID: "s1", Kind: session.KindGround, ItemID: i, Outcome: "UNKNOWN"})
				idx.RecordSessionClosed("s1", time.Now())
			}
		}()
	}
	close(start)
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	// Writes after close are ignored.
	_ = idx.WriteDecision(session.Decision{SessionID: "s1", Kind: session.KindGround})
	idx.RecordSessionOpened("s2", "host", time.Now())
}
