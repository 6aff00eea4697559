package log

import (
	"testing"
	"time"

	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/session"
)

func TestEventLoggerRotatesHourly(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 59, 0, 0, time.UTC)

	l := NewEventLogger(dir)
	l.w.now = func() time.Time { return now }

	item := 556
	for i := 0; i < 3; i++ {
		ev := protocol.EventMsg{Kind: protocol.EventItemSpawned, Seq: uint64(i + 1), Pos: &[3]int{3200, 3200, 0}, Item: &item}
		if err := l.WriteEvent("s1", ev); err != nil {
			t.Fatalf("write: %v", err)
		}
		if i == 1 {
			now = now.Add(2 * time.Minute)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir+"/events", "events")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files: got %d want 2 (%v)", len(files), files)
	}

	var seqs []uint64
	err = ScanEvents(files, func(rec EventRecord) error {
		if rec.SessionID != "s1" {
			t.Fatalf("session id: %q", rec.SessionID)
		}
		seqs = append(seqs, rec.Event.Seq)
		return nil
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(seqs) != 3 || seqs[0] != 1 || seqs[2] != 3 {
		t.Fatalf("seqs: %v", seqs)
	}
}

func TestWriterAppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		l := NewDecisionLogger(dir)
		l.w.now = func() time.Time { return now }
		if err := l.WriteDecision(session.Decision{Kind: session.KindGround, Outcome: "OTHER_PLAYER", ItemID: i}); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := l.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	files, err := ListFiles(dir+"/decisions", "decisions")
	if err != nil || len(files) != 1 {
		t.Fatalf("list: %v %v", files, err)
	}
	n := 0
	if err := ScanFile(files[0], func([]byte) error { n++; return nil }); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if n != 2 {
		t.Fatalf("lines: got %d want 2", n)
	}
}

func TestWriterBatchesUntilFlush(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	w := NewJSONLZstdWriter(dir, "batch", WriterOptions{FlushEvery: 3})
	w.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if err := w.Write(map[string]int{"i": i}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if w.pending != 2 {
		t.Fatalf("pending: got %d want 2", w.pending)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if w.pending != 0 {
		t.Fatalf("pending after flush: %d", w.pending)
	}
	for i := 2; i < 6; i++ {
		if i == 4 {
			now = now.Add(time.Hour)
		}
		if err := w.Write(map[string]int{"i": i}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// Rotation closed the first hour, so only the second hour's records are pending.
	if w.pending != 2 {
		t.Fatalf("pending after rotation: got %d want 2", w.pending)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, err := ListFiles(dir, "batch")
	if err != nil || len(files) != 2 {
		t.Fatalf("list: %v %v", files, err)
	}
	n := 0
	for _, f := range files {
		if err := ScanFile(f, func([]byte) error { n++; return nil }); err != nil {
			t.Fatalf("scan: %v", err)
		}
	}
	if n != 6 {
		t.Fatalf("lines: got %d want 6", n)
	}
}
