package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/Podcastindex-org/helipad-sub000/internal/outboost"
)

// sendBoostRequest is the request body for POST /boost. TLV is passed
// through verbatim as the podcasting 2.0 boostagram payload, the same way
// the reference implementation's send_boost takes an arbitrary JSON value
// rather than a fixed struct.
type sendBoostRequest struct {
	Address     string          `json:"address"`
	Sats        int64           `json:"sats"`
	CustomKey   uint64          `json:"custom_key,omitempty"`
	CustomValue string          `json:"custom_value,omitempty"`
	SenderName  string          `json:"sender_name,omitempty"`
	TLV         json.RawMessage `json:"tlv"`
}

type sendBoostResponse struct {
	PaymentHash string `json:"payment_hash"`
}

// handleSendBoost resolves address to a payable target and sends sats
// immediately. The resulting payment is not persisted here -- the payment
// poller's next pass over ListPayments discovers and stores it like any
// other outgoing payment.
func (s *Server) handleSendBoost(w http.ResponseWriter, r *http.Request) {
	if s.client == nil {
		writeError(w, http.StatusServiceUnavailable, errNoLightningClient)
		return
	}

	var req sendBoostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Address == "" || req.Sats <= 0 {
		writeError(w, http.StatusBadRequest, errInvalidSendBoostRequest)
		return
	}
	if len(req.TLV) == 0 {
		req.TLV = json.RawMessage(`{}`)
	}

	target, err := s.resolver.Resolve(r.Context(), req.Address, req.CustomKey, req.CustomValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	payment, err := outboost.SendBoost(r.Context(), s.client, s.resolver, target, req.Sats, []byte(req.TLV), req.SenderName)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, sendBoostResponse{PaymentHash: payment.PaymentHash})
}
