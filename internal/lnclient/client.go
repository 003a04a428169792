// Package lnclient defines the backend-agnostic capability set over a
// Lightning node (LND or CLN) that the rest of helipad is built against.
package lnclient

import (
	"context"
	"errors"
	"fmt"
)

// NodeInfo is the unconditionally-populated result of GetInfo.
type NodeInfo struct {
	Pubkey   string
	Alias    string
	Version  string
	NodeType string // "LND" or "CLN"
}

// HTLC carries one HTLC's custom TLV records, already flattened by the
// backend implementation (LND walks route.hops[last]; CLN has no route
// concept and attaches its extratlvs directly).
type HTLC struct {
	CustomRecords map[uint64][]byte
}

// Invoice is a backend-agnostic view of one settled (or held) invoice.
type Invoice struct {
	AddIndex       uint64
	SettleDate     int64
	AmtPaidSat     int64
	Settled        bool
	Memo           string
	PaymentRequest string
	PaymentHash    string
	Preimage       string
	Htlcs          []HTLC
}

// Payment is a backend-agnostic view of one successful outgoing payment.
type Payment struct {
	PaymentIndex    uint64
	CreationTime    int64 // unix seconds
	ValueMsat       int64
	FeeMsat         int64
	PaymentHash     string
	PaymentPreimage string
	Destination     string

	// LastHopCustomRecords is the custom_records map the backend resolved
	// from the final route hop (LND) or the keysend extratlvs (CLN).
	LastHopCustomRecords map[uint64][]byte
}

// Client is the capability set every backend variant implements. Callers
// hold one Client for the process lifetime; backend-specific reconnect
// logic lives behind each implementation.
type Client interface {
	GetInfo(ctx context.Context) (NodeInfo, error)
	ChannelBalance(ctx context.Context) (int64, error)

	// ListInvoices and ListPayments return settled invoices / completed
	// payments with an index strictly greater than start -- start is the
	// caller's last-processed index, not the first index wanted. Each
	// backend translates that into its own wire offset semantics.
	ListInvoices(ctx context.Context, start, limit uint64) ([]Invoice, error)
	ListPayments(ctx context.Context, start, limit uint64) ([]Payment, error)

	// SubscribeInvoices returns a channel of invoice updates with
	// add_index > start, and an error channel that receives exactly one
	// error (possibly nil) when the stream terminates. Both channels are
	// closed on termination.
	SubscribeInvoices(ctx context.Context, start uint64) (<-chan Invoice, <-chan error)

	// Keysend sends sats to destPubkeyHex carrying customRecords (the
	// caller need not set the keysend preimage TLV; Keysend adds it).
	// Returns ErrPaymentNotFound if the payment succeeded but could not be
	// located afterwards in payment history.
	Keysend(ctx context.Context, destPubkeyHex string, sats int64, customRecords map[uint64][]byte) (Payment, error)

	// PayInvoice pays a bolt11 payment request, used for the LNURL-pay
	// fallback when a recipient has no keysend well-known endpoint.
	PayInvoice(ctx context.Context, bolt11 string, maxFeeSats int64) (Payment, error)

	Close() error
}

// TransportError wraps a connection-level failure; callers should
// reconnect using the original credentials rather than treat it as fatal.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// CredentialError wraps a missing/invalid cert or macaroon at startup;
// this is fatal and the process should exit non-zero.
type CredentialError struct {
	Err error
}

func (e *CredentialError) Error() string { return fmt.Sprintf("credential error: %v", e.Err) }
func (e *CredentialError) Unwrap() error { return e.Err }

// ErrPaymentNotFound is returned by Keysend when the node accepted the
// payment but it could not be located afterwards by hash in payment
// history (the spec's §9 Open Question decision: surface, let the caller
// retry the lookup, rather than silently persist nothing).
var ErrPaymentNotFound = errors.New("lnclient: payment not found after keysend")

// KeysendFailedError wraps a non-empty payment_error reported by the node.
type KeysendFailedError struct {
	Reason string
}

func (e *KeysendFailedError) Error() string { return "lnclient: keysend failed: " + e.Reason }
