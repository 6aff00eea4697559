package metrics

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"ironfilter.ai/internal/session"
)

func TestCollectorCounts(t *testing.T) {
	c := New()

	c.ObserveEvent("ITEM_SPAWNED", nil)
	c.ObserveEvent("ITEM_SPAWNED", fmt.Errorf("bad pos: %w", session.ErrSkipped))
	c.ObserveEvent("ITEM_SPAWNED", nil)
	_ = c.WriteDecision(session.Decision{Kind: session.KindGround, Outcome: "PLAYER_LOOT"})
	c.ObserveQuery("CAN_ACQUIRE", "")
	c.ObserveQuery("CAN_ACQUIRE", "E_BAD_REQUEST")
	c.SessionOpened()
	c.SessionOpened()
	c.SessionClosed()

	if got := testutil.ToFloat64(c.events.WithLabelValues("ITEM_SPAWNED", "applied")); got != 2 {
		t.Fatalf("applied events: %v", got)
	}
	if got := testutil.ToFloat64(c.events.WithLabelValues("ITEM_SPAWNED", "skipped")); got != 1 {
		t.Fatalf("skipped events: %v", got)
	}
	if got := testutil.ToFloat64(c.decisions.WithLabelValues(session.KindGround, "PLAYER_LOOT")); got != 1 {
		t.Fatalf("decisions: %v", got)
	}
	if got := testutil.ToFloat64(c.queries.WithLabelValues("CAN_ACQUIRE", "OK")); got != 1 {
		t.Fatalf("queries ok: %v", got)
	}
	if got := testutil.ToFloat64(c.sessions); got != 1 {
		t.Fatalf("sessions: %v", got)
	}
}

func TestHandlerExposition(t *testing.T) {
	c := New()
	c.ObserveQuery("STATS", "")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `ironfilter_queries_total{code="OK",query="STATS"} 1`) {
		t.Fatalf("exposition missing counter:\n%s", body)
	}
}
