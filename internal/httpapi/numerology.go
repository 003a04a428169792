package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Podcastindex-org/helipad-sub000/internal/store"
)

func (s *Server) handleListNumerology(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListNumerology(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleSaveNumerology(w http.ResponseWriter, r *http.Request) {
	var n store.Numerology
	if err := decodeJSON(r, &n); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index, err := s.store.SaveNumerology(r.Context(), &n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"index": index})
}

func (s *Server) handleDeleteNumerology(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid numerology id: %w", err))
		return
	}
	if err := s.store.DeleteNumerology(r.Context(), index); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
