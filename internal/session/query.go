package session

import (
	"ironfilter.ai/internal/coords"
	"ironfilter.ai/internal/protocol"
)

// Answer resolves one host query. Point queries about an unrestricted
// account are refused with E_NOT_RESTRICTED because the trackers hold
// nothing for it.
func (s *Session) Answer(q protocol.QueryMsg) (protocol.ResultMsg, *protocol.ErrorMsg) {
	res := protocol.ResultMsg{
		Type:            protocol.TypeResult,
		ProtocolVersion: protocol.Version,
		ReqID:           q.ReqID,
		Query:           q.Query,
	}
	fail := func(code, msg string) (protocol.ResultMsg, *protocol.ErrorMsg) {
		e := protocol.NewError(q.ReqID, code, msg)
		return protocol.ResultMsg{}, &e
	}

	switch q.Query {
	case protocol.QueryStats:
		res.Stats = s.Stats()
		return res, nil
	case protocol.QueryFilterMenu:
		res.Entries = s.FilterMenu(q.Entries)
		if res.Entries == nil {
			res.Entries = []protocol.MenuEntry{}
		}
		return res, nil
	case protocol.QueryCanAcquire, protocol.QueryOwnership:
		if q.Pos == nil || q.Item == nil {
			return fail(protocol.ErrBadRequest, "pos and item are required")
		}
		if !s.Restricted() {
			return fail(protocol.ErrNotRestricted, "account is not restricted")
		}
		pos := coords.FromArray(*q.Pos)
		state := s.Ground.QueryOwnership(pos, *q.Item)
		allowed := state.Acquirable()
		res.Allowed = &allowed
		res.Ownership = state.String()
		return res, nil
	case protocol.QueryCanPurchase, protocol.QueryIsPlayerSold:
		if q.Item == nil {
			return fail(protocol.ErrBadRequest, "item is required")
		}
		if !s.Restricted() {
			return fail(protocol.ErrNotRestricted, "account is not restricted")
		}
		id, ok := s.shopFor(q.ShopID)
		if !ok {
			return fail(protocol.ErrBadRequest, "no shop_id and no shop open")
		}
		allowed := s.Shops.CanPurchase(id, *q.Item)
		if q.Query == protocol.QueryIsPlayerSold {
			allowed = !allowed
		}
		res.Allowed = &allowed
		return res, nil
	default:
		return fail(protocol.ErrUnknownQuery, "unknown query: "+q.Query)
	}
}
