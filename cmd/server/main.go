package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"ironfilter.ai/internal/catalogs"
	"ironfilter.ai/internal/config"
	"ironfilter.ai/internal/metrics"
	"ironfilter.ai/internal/persistence/indexdb"
	persistlog "ironfilter.ai/internal/persistence/log"
	"ironfilter.ai/internal/session"
	"ironfilter.ai/internal/transport/ws"
	"ironfilter.ai/internal/tuning"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address")
		configDir  = flag.String("configs", "", "config directory with items.json, static_spawns.json, shops.json (default: built-in seeds)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite decision index")
		noEventLog = flag.Bool("disable_event_log", false, "do not record inbound events for replay")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	envCfg, err := config.LoadServerEnv()
	if err != nil {
		logger.Fatalf("load env: %v", err)
	}

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tune := tuning.Defaults()
	tp := strings.TrimSpace(*tuningPath)
	if tp == "" && *configDir != "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	if tp != "" {
		t, err := tuning.Load(tp)
		switch {
		case err == nil:
			tune = t
		case os.IsNotExist(err):
			logger.Printf("tuning not found (%s); using defaults", tp)
		default:
			logger.Fatalf("load tuning: %v", err)
		}
	}

	seeds := session.NewSeeds(cats, tune)
	logger.Printf("seeds: items=%d static_spawns=%d shops=%d", len(cats.Items.Defs), seeds.Statics.Len(), len(seeds.Known.Names()))

	_ = os.MkdirAll(*dataDir, 0o755)

	var idx *indexdb.SQLiteIndex
	if !*disableDB && !envCfg.DisableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(*dataDir, "index.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
	}

	decisionLog := persistlog.NewDecisionLogger(*dataDir)
	defer decisionLog.Close()

	var events ws.EventLog
	if !*noEventLog {
		eventLog := persistlog.NewEventLogger(*dataDir)
		defer eventLog.Close()
		events = eventLog
	}

	m := metrics.New()
	sinks := session.MultiSink{decisionLog, m}
	var sessions ws.SessionRecorder
	if idx != nil {
		sinks = append(sinks, idx)
		sessions = idx
	}

	wsSrv := ws.NewServer(ws.Options{
		Tuning:      tune,
		Seeds:       seeds,
		Sink:        sinks,
		Events:      events,
		Observer:    m,
		Sessions:    sessions,
		MaxSessions: envCfg.MaxSessions,
	}, logger)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := decisionLog.Flush(); err != nil {
					logger.Printf("decision log flush: %v", err)
				}
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.Handle("/metrics", m.Handler())

	if envCfg.AdminEnabled() {
		// Local-only admin endpoints.
		mux.HandleFunc("/admin/v1/sessions", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(rw).Encode(map[string]any{
				"sessions": wsSrv.SessionStats(),
				"index":    idx.Stats(),
			})
		})
		mux.HandleFunc("/admin/v1/decisions", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			if idx == nil {
				http.Error(rw, "index disabled", http.StatusServiceUnavailable)
				return
			}
			q := r.URL.Query()
			limit, _ := strconv.Atoi(q.Get("limit"))
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			list, err := idx.RecentDecisions(ctx2, indexdb.DecisionFilter{
				SessionID: q.Get("session_id"),
				Kind:      q.Get("kind"),
				Limit:     limit,
			})
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "decisions": list})
		})
	} else {
		logger.Printf("admin endpoints disabled (IRONFILTER_ENABLE_ADMIN_HTTP=false)")
	}
	if envCfg.PprofHTTP {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Sessions are released before the deferred sink closes run.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
		if err := wsSrv.Close(ctx2); err != nil {
			logger.Printf("ws close: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
	<-stopped
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
