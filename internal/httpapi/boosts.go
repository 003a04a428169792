package httpapi

import (
	"net/http"
	"strconv"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
	"github.com/Podcastindex-org/helipad-sub000/internal/store"
)

// listFilterFromQuery builds a store.ListFilter from the standard set of
// query parameters shared by /boosts, /streams, and (indirectly) /payments.
func listFilterFromQuery(q map[string][]string) store.ListFilter {
	var f store.ListFilter
	if v := first(q, "podcast"); v != "" {
		f.Podcast = v
	}
	if v := first(q, "start"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.StartDate = n
		}
	}
	if v := first(q, "end"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.EndDate = n
		}
	}
	return f
}

func first(q map[string][]string, key string) string {
	if vs, ok := q[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func pagingParams(r *http.Request) (index, max uint64, forward bool) {
	index = 0
	max = 100
	forward = false
	if v := r.URL.Query().Get("index"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			index = n
		}
	}
	if v := r.URL.Query().Get("max"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
			max = n
		}
	}
	if v := r.URL.Query().Get("forward"); v == "true" {
		forward = true
	}
	return
}

func (s *Server) handleListBoosts(w http.ResponseWriter, r *http.Request) {
	index, max, forward := pagingParams(r)
	filter := listFilterFromQuery(r.URL.Query())
	filter.Actions = []boost.ActionType{boost.ActionBoost, boost.ActionAuto, boost.ActionInvoice}

	recs, err := s.store.ListBoosts(r.Context(), index, max, forward, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	withEffects, err := s.engine.GetBoostsWithEffects(r.Context(), recs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, withEffects)
}

func (s *Server) handleListStreams(w http.ResponseWriter, r *http.Request) {
	index, max, forward := pagingParams(r)
	filter := listFilterFromQuery(r.URL.Query())
	filter.Actions = []boost.ActionType{boost.ActionStream}

	recs, err := s.store.ListStreams(r.Context(), index, max, forward, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	withEffects, err := s.engine.GetBoostsWithEffects(r.Context(), recs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, withEffects)
}
