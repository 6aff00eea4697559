package session

import (
	"errors"
	"time"
)

// Decision kinds.
const (
	KindGround      = "ground"
	KindShop        = "shop"
	KindKill        = "kill"
	KindFilter      = "filter"
	KindReset       = "reset"
	KindMaintenance = "maintenance"
)

// Decision is an audit record of one classification or filter outcome.
type Decision struct {
	Time      time.Time `json:"time"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Pos       *[3]int   `json:"pos,omitempty"`
	ItemID    int       `json:"item,omitempty"`
	ShopID    string    `json:"shop_id,omitempty"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
}

type DecisionSink interface {
	WriteDecision(Decision) error
}

// MultiSink fans a decision out to every sink and joins their errors.
type MultiSink []DecisionSink

func (m MultiSink) WriteDecision(d Decision) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.WriteDecision(d); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DecisionRecorder keeps decisions in memory. Tests use it as a sink.
type DecisionRecorder struct {
	Decisions []Decision
}

func (r *DecisionRecorder) WriteDecision(d Decision) error {
	r.Decisions = append(r.Decisions, d)
	return nil
}

func (r *DecisionRecorder) ByKind(kind string) []Decision {
	var out []Decision
	for _, d := range r.Decisions {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
