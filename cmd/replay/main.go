package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"ironfilter.ai/internal/catalogs"
	persistlog "ironfilter.ai/internal/persistence/log"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/tuning"
)

func main() {
	var (
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		configDir  = flag.String("configs", "", "config directory (default: built-in seeds)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (optional)")
		onlySess   = flag.String("session", "", "replay only this session id (optional)")
		hostClock  = flag.Bool("host_clock", false, "time windows follow the host's time_ms instead of the server receive time the live run used")
	)
	flag.Parse()

	if *eventsDir == "" {
		fmt.Fprintln(os.Stderr, "missing -events")
		os.Exit(2)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tune := tuning.Defaults()
	if *tuningPath != "" {
		if tune, err = tuning.Load(*tuningPath); err != nil {
			fmt.Fprintln(os.Stderr, "load tuning:", err)
			os.Exit(1)
		}
	}

	files, err := persistlog.ListFiles(*eventsDir, "events")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}

	r := newReplayer(session.NewSeeds(cats, tune), tune)
	r.hostClock = *hostClock
	err = persistlog.ScanEvents(files, func(rec persistlog.EventRecord) error {
		if *onlySess != "" && rec.SessionID != *onlySess {
			return nil
		}
		r.apply(rec)
		return nil
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}
	r.close()

	fmt.Printf("replay ok: files=%d sessions=%d events=%d skipped=%d\n", len(files), len(r.sessions), r.events, r.skipped)
	for _, line := range r.counts.lines() {
		fmt.Println(line)
	}
}

// replayer re-runs recorded events through fresh sessions. By default the
// clock follows the receive time stamped by the event log, which is the clock
// the live server applied the event with. hostClock switches to time_ms.
type replayer struct {
	seeds     *session.Seeds
	tune      tuning.Tuning
	hostClock bool

	clock    time.Time
	sessions map[string]*session.Session
	counts   outcomeCounter
	events   int
	skipped  int
}

func newReplayer(seeds *session.Seeds, tune tuning.Tuning) *replayer {
	return &replayer{
		seeds:    seeds,
		tune:     tune,
		sessions: map[string]*session.Session{},
		counts:   outcomeCounter{},
	}
}

func (r *replayer) now() time.Time { return r.clock }

func (r *replayer) apply(rec persistlog.EventRecord) {
	at := rec.Time
	if r.hostClock && rec.Event.TimeMs > 0 {
		at = time.UnixMilli(rec.Event.TimeMs).UTC()
	}
	if at.After(r.clock) {
		r.clock = at
	}
	sess, ok := r.sessions[rec.SessionID]
	if !ok {
		sess = session.New(session.Config{
			ID:     rec.SessionID,
			Tuning: r.tune,
			Seeds:  r.seeds,
			Now:    r.now,
			Sink:   r.counts,
		})
		r.sessions[rec.SessionID] = sess
	}
	r.events++
	if err := sess.Apply(rec.Event); err != nil {
		r.skipped++
	}
}

func (r *replayer) close() {
	for _, sess := range r.sessions {
		sess.Close()
	}
}

type outcomeCounter map[string]int

func (c outcomeCounter) WriteDecision(d session.Decision) error {
	c[d.Kind+" "+d.Outcome]++
	return nil
}

func (c outcomeCounter) lines() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("  %-40s %d", strings.ToLower(k), c[k]))
	}
	return out
}

