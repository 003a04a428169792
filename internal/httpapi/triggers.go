package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Podcastindex-org/helipad-sub000/internal/store"
)

func (s *Server) handleListTriggers(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTriggers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveTrigger(w http.ResponseWriter, r *http.Request) {
	var t store.Trigger
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index, err := s.store.SaveTrigger(r.Context(), &t)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"index": index})
}

func (s *Server) handleDeleteTrigger(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid trigger id: %w", err))
		return
	}
	if err := s.store.DeleteTrigger(r.Context(), index); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTestTrigger runs trigger {id}'s predicates and effect assembly
// against a synthetic sample boost record without touching the store or
// firing any real webhook/OSC/sound effect, mirroring triggers.Engine's own
// TestTrigger semantics.
func (s *Server) handleTestTrigger(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid trigger id: %w", err))
		return
	}

	trigger, err := s.store.GetTrigger(r.Context(), index)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	result, err := s.engine.TestTrigger(r.Context(), trigger)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
