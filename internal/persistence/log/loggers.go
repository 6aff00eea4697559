package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"ironfilter.ai/internal/protocol"
	"ironfilter.ai/internal/session"
)

// WriterOptions tunes how often buffered records reach disk.
type WriterOptions struct {
	// FlushEvery flushes after this many records. 1 or less flushes every
	// record.
	FlushEvery int
	// BufferSize is the line buffer in front of the encoder. Default 64 KiB.
	BufferSize int
	// Level defaults to zstd.SpeedFastest.
	Level zstd.EncoderLevel
}

// JSONLZstdWriter appends one JSON document per line to an hourly rotated
// zstd file named <prefix>-YYYY-MM-DD-HH.jsonl.zst. Reopening an hour appends
// a new zstd frame to the same file.
type JSONLZstdWriter struct {
	baseDir string
	prefix  string
	opts    WriterOptions
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	pending int
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewJSONLZstdWriter(baseDir, prefix string, opts WriterOptions) *JSONLZstdWriter {
	if opts.FlushEvery < 1 {
		opts.FlushEvery = 1
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 64 * 1024
	}
	if opts.Level == 0 {
		opts.Level = zstd.SpeedFastest
	}
	return &JSONLZstdWriter{
		baseDir: baseDir,
		prefix:  prefix,
		opts:    opts,
		now:     time.Now,
	}
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	hour := w.now().UTC().Format("2006-01-02-15")
	if hour != w.curHour {
		if err := w.rotateLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.pending++
	if w.pending >= w.opts.FlushEvery {
		return w.flushLocked()
	}
	return nil
}

// Flush pushes buffered records through the encoder to the file.
func (w *JSONLZstdWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

func (w *JSONLZstdWriter) flushLocked() error {
	if w.w == nil {
		return nil
	}
	w.pending = 0
	if err := w.w.Flush(); err != nil {
		return err
	}
	return w.enc.Flush()
}

func (w *JSONLZstdWriter) rotateLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathForHour(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(w.opts.Level))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, w.opts.BufferSize)
	w.curHour = hour
	return nil
}

// closeLocked ends the current hour's frame. The first error wins.
func (w *JSONLZstdWriter) closeLocked() error {
	var err error
	if w.w != nil {
		err = w.w.Flush()
	}
	if w.enc != nil {
		if cerr := w.enc.Close(); err == nil {
			err = cerr
		}
		w.enc = nil
	}
	if w.f != nil {
		if cerr := w.f.Close(); err == nil {
			err = cerr
		}
		w.f = nil
	}
	w.w = nil
	w.pending = 0
	w.curHour = ""
	return err
}

func (w *JSONLZstdWriter) pathForHour(hour string) string {
	return filepath.Join(w.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// EventRecord is one inbound host event as stored for replay.
type EventRecord struct {
	Time      time.Time         `json:"time"`
	SessionID string            `json:"session_id"`
	Event     protocol.EventMsg `json:"event"`
}

// EventLogger writes every inbound host event (compressed). Each event is
// flushed so a replay sees everything the server applied.
type EventLogger struct{ w *JSONLZstdWriter }

func NewEventLogger(dataDir string) *EventLogger {
	return &EventLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "events"), "events", WriterOptions{FlushEvery: 1})}
}

func (l *EventLogger) WriteEvent(sessionID string, ev protocol.EventMsg) error {
	return l.w.Write(EventRecord{Time: l.w.now().UTC(), SessionID: sessionID, Event: ev})
}

func (l *EventLogger) Close() error { return l.w.Close() }

// DecisionLogger writes classification decisions (compressed). It is a
// session.DecisionSink. Menu filtering emits a decision per hidden entry, so
// records are batched; call Flush periodically.
type DecisionLogger struct{ w *JSONLZstdWriter }

// DecisionFlushEvery is the decision batch size between automatic flushes.
const DecisionFlushEvery = 256

func NewDecisionLogger(dataDir string) *DecisionLogger {
	return &DecisionLogger{w: NewJSONLZstdWriter(filepath.Join(dataDir, "decisions"), "decisions", WriterOptions{
		FlushEvery: DecisionFlushEvery,
		BufferSize: 256 * 1024,
	})}
}

func (l *DecisionLogger) WriteDecision(d session.Decision) error { return l.w.Write(d) }

func (l *DecisionLogger) Flush() error { return l.w.Flush() }

func (l *DecisionLogger) Close() error { return l.w.Close() }
