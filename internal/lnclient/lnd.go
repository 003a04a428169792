package lnclient

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/lightningnetwork/lnd/lnrpc"
	"github.com/lightningnetwork/lnd/lnrpc/routerrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

// keysendPreimageTLV is the custom-record key a keysend payment's preimage
// travels on, per LND's keysend convention (BOLT-compliant value, not
// assignable by helipad).
const keysendPreimageTLV = 5482373484

// LNDConfig is the connection configuration for the LND backend.
type LNDConfig struct {
	GRPCHost     string
	GRPCPort     string
	TLSCertPath  string
	MacaroonPath string
	// PaymentTimeoutSeconds bounds how long a keysend payment is allowed to
	// stay in flight before SendPaymentV2 gives up.
	PaymentTimeoutSeconds int32
	MaxPaymentFeeSats     int64
}

type macaroonCredential struct {
	macaroon string
}

func (m macaroonCredential) GetRequestMetadata(ctx context.Context, uri ...string) (map[string]string, error) {
	return map[string]string{"macaroon": m.macaroon}, nil
}

func (m macaroonCredential) RequireTransportSecurity() bool { return true }

type lndClient struct {
	conn         *grpc.ClientConn
	ln           lnrpc.LightningClient
	router       routerrpc.RouterClient
	cfg          LNDConfig
}

// DialLND connects to an LND node's gRPC API using its TLS certificate and
// macaroon, and validates the connection with a GetInfo call before
// returning.
func DialLND(cfg LNDConfig) (Client, error) {
	creds, err := credentials.NewClientTLSFromFile(cfg.TLSCertPath, "")
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("load tls cert %s: %w", cfg.TLSCertPath, err)}
	}

	macaroonBytes, err := os.ReadFile(cfg.MacaroonPath)
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("read macaroon %s: %w", cfg.MacaroonPath, err)}
	}
	macCreds := macaroonCredential{macaroon: hex.EncodeToString(macaroonBytes)}

	addr := cfg.GRPCHost + ":" + cfg.GRPCPort
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds), grpc.WithPerRPCCredentials(macCreds))
	if err != nil {
		return nil, &CredentialError{Err: fmt.Errorf("dial %s: %w", addr, err)}
	}

	ln := lnrpc.NewLightningClient(conn)
	if _, err := ln.GetInfo(context.Background(), &lnrpc.GetInfoRequest{}); err != nil {
		conn.Close()
		return nil, &TransportError{Err: fmt.Errorf("getinfo: %w", err)}
	}

	return &lndClient{
		conn:   conn,
		ln:     ln,
		router: routerrpc.NewRouterClient(conn),
		cfg:    cfg,
	}, nil
}

func (c *lndClient) Close() error { return c.conn.Close() }

func (c *lndClient) GetInfo(ctx context.Context) (NodeInfo, error) {
	resp, err := c.ln.GetInfo(ctx, &lnrpc.GetInfoRequest{})
	if err != nil {
		return NodeInfo{}, &TransportError{Err: err}
	}
	return NodeInfo{
		Pubkey:   resp.IdentityPubkey,
		Alias:    resp.Alias,
		Version:  resp.Version,
		NodeType: "LND",
	}, nil
}

func (c *lndClient) ChannelBalance(ctx context.Context) (int64, error) {
	resp, err := c.ln.ChannelBalance(ctx, &lnrpc.ChannelBalanceRequest{})
	if err != nil {
		return 0, &TransportError{Err: err}
	}
	if resp.LocalBalance != nil {
		return int64(resp.LocalBalance.Sat), nil
	}
	return int64(resp.Balance), nil
}

func lndHtlcsToHTLCs(htlcs []*lnrpc.InvoiceHTLC) []HTLC {
	out := make([]HTLC, 0, len(htlcs))
	for _, h := range htlcs {
		records := make(map[uint64][]byte, len(h.CustomRecords))
		for k, v := range h.CustomRecords {
			records[k] = v
		}
		out = append(out, HTLC{CustomRecords: records})
	}
	return out
}

func lndInvoiceToInvoice(inv *lnrpc.Invoice) Invoice {
	return Invoice{
		AddIndex:       inv.AddIndex,
		SettleDate:     inv.SettleDate,
		AmtPaidSat:     inv.AmtPaidSat,
		Settled:        inv.State == lnrpc.Invoice_SETTLED,
		Memo:           inv.Memo,
		PaymentRequest: inv.PaymentRequest,
		PaymentHash:    hex.EncodeToString(inv.RHash),
		Preimage:       hex.EncodeToString(inv.RPreimage),
		Htlcs:          lndHtlcsToHTLCs(inv.Htlcs),
	}
}

func (c *lndClient) ListInvoices(ctx context.Context, start, limit uint64) ([]Invoice, error) {
	resp, err := c.ln.ListInvoices(ctx, &lnrpc.ListInvoiceRequest{
		IndexOffset:    start,
		NumMaxInvoices: limit,
		Reversed:       false,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var out []Invoice
	for _, inv := range resp.Invoices {
		if inv.State != lnrpc.Invoice_SETTLED {
			continue
		}
		out = append(out, lndInvoiceToInvoice(inv))
	}
	return out, nil
}

// lastHopCustomRecords extracts the custom records LND attached to the
// final route hop of a completed payment's successful attempt.
func lastHopCustomRecords(p *lnrpc.Payment) map[uint64][]byte {
	for _, attempt := range p.Htlcs {
		if attempt.Status != lnrpc.HTLCAttempt_SUCCEEDED || attempt.Route == nil {
			continue
		}
		hops := attempt.Route.Hops
		if len(hops) == 0 {
			continue
		}
		last := hops[len(hops)-1]
		if len(last.CustomRecords) == 0 {
			continue
		}
		records := make(map[uint64][]byte, len(last.CustomRecords))
		for k, v := range last.CustomRecords {
			records[k] = v
		}
		return records
	}
	return nil
}

// lastHopSucceededRoute returns the Route of the first succeeded HTLC
// attempt, or nil if none succeeded.
func lastHopSucceededRoute(p *lnrpc.Payment) *lnrpc.Route {
	for _, attempt := range p.Htlcs {
		if attempt.Status == lnrpc.HTLCAttempt_SUCCEEDED && attempt.Route != nil && len(attempt.Route.Hops) > 0 {
			return attempt.Route
		}
	}
	return nil
}

// lastHopPubkey returns the destination pubkey the succeeded route actually
// paid to, falling back to the payment's own target pubkey.
func lastHopPubkey(p *lnrpc.Payment) string {
	if route := lastHopSucceededRoute(p); route != nil {
		hops := route.Hops
		return hops[len(hops)-1].PubKey
	}
	return ""
}

func lndPaymentToPayment(p *lnrpc.Payment) Payment {
	return Payment{
		PaymentIndex:         p.PaymentIndex,
		CreationTime:         p.CreationTimeNs / 1_000_000_000,
		ValueMsat:            p.ValueMsat,
		FeeMsat:              p.FeeMsat,
		PaymentHash:          p.PaymentHash,
		PaymentPreimage:      p.PaymentPreimage,
		Destination:          lastHopPubkey(p),
		LastHopCustomRecords: lastHopCustomRecords(p),
	}
}

func (c *lndClient) ListPayments(ctx context.Context, start, limit uint64) ([]Payment, error) {
	resp, err := c.ln.ListPayments(ctx, &lnrpc.ListPaymentsRequest{
		IndexOffset:       start,
		MaxPayments:       limit,
		IncludeIncomplete: false,
	})
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var out []Payment
	for _, p := range resp.Payments {
		if p.Status != lnrpc.Payment_SUCCEEDED {
			continue
		}
		out = append(out, lndPaymentToPayment(p))
	}
	return out, nil
}

func (c *lndClient) SubscribeInvoices(ctx context.Context, start uint64) (<-chan Invoice, <-chan error) {
	invoices := make(chan Invoice)
	errs := make(chan error, 1)

	stream, err := c.ln.SubscribeInvoices(ctx, &lnrpc.InvoiceSubscription{AddIndex: start})
	if err != nil {
		go func() {
			errs <- &TransportError{Err: err}
			close(invoices)
			close(errs)
		}()
		return invoices, errs
	}

	go func() {
		defer close(invoices)
		defer close(errs)
		for {
			inv, err := stream.Recv()
			if err != nil {
				errs <- &TransportError{Err: err}
				return
			}
			if inv.State != lnrpc.Invoice_SETTLED {
				continue
			}
			select {
			case invoices <- lndInvoiceToInvoice(inv):
			case <-ctx.Done():
				errs <- ctx.Err()
				return
			}
		}
	}()

	return invoices, errs
}

func (c *lndClient) Keysend(ctx context.Context, destPubkeyHex string, sats int64, customRecords map[uint64][]byte) (Payment, error) {
	dest, err := hex.DecodeString(destPubkeyHex)
	if err != nil {
		return Payment{}, fmt.Errorf("lnclient: decode destination pubkey: %w", err)
	}

	preimage := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, preimage); err != nil {
		return Payment{}, fmt.Errorf("lnclient: generate preimage: %w", err)
	}
	hash := sha256.Sum256(preimage)

	records := make(map[uint64][]byte, len(customRecords)+1)
	for k, v := range customRecords {
		records[k] = v
	}
	records[keysendPreimageTLV] = preimage

	req := &routerrpc.SendPaymentRequest{
		Dest:              dest,
		Amt:               sats,
		PaymentHash:       hash[:],
		DestCustomRecords: records,
		TimeoutSeconds:    c.cfg.PaymentTimeoutSeconds,
		FeeLimitSat:       c.cfg.MaxPaymentFeeSats,
	}

	stream, err := c.router.SendPaymentV2(ctx, req)
	if err != nil {
		return Payment{}, &TransportError{Err: err}
	}

	for {
		status, err := stream.Recv()
		if err != nil {
			return Payment{}, &TransportError{Err: err}
		}
		switch status.Status {
		case lnrpc.Payment_SUCCEEDED:
			return c.lookupSentPayment(ctx, status.PaymentHash)
		case lnrpc.Payment_FAILED:
			return Payment{}, &KeysendFailedError{Reason: status.FailureReason.String()}
		default:
			continue
		}
	}
}

// lookupSentPayment re-reads a just-completed payment from LND's payment
// history to recover its assigned PaymentIndex and final route's custom
// records, since SendPaymentV2's terminal status update doesn't carry
// either.
func (c *lndClient) lookupSentPayment(ctx context.Context, paymentHash string) (Payment, error) {
	resp, err := c.ln.ListPayments(ctx, &lnrpc.ListPaymentsRequest{MaxPayments: 500, Reversed: true})
	if err != nil {
		return Payment{}, &TransportError{Err: err}
	}
	for _, p := range resp.Payments {
		if p.PaymentHash == paymentHash {
			return lndPaymentToPayment(p), nil
		}
	}
	return Payment{}, ErrPaymentNotFound
}

// PayInvoice pays a bolt11 payment request through the same
// SendPaymentV2 streaming call Keysend uses, capping the routing fee at
// maxFeeSats (falling back to the client's configured default when 0).
func (c *lndClient) PayInvoice(ctx context.Context, bolt11 string, maxFeeSats int64) (Payment, error) {
	if maxFeeSats <= 0 {
		maxFeeSats = c.cfg.MaxPaymentFeeSats
	}

	req := &routerrpc.SendPaymentRequest{
		PaymentRequest: bolt11,
		TimeoutSeconds: c.cfg.PaymentTimeoutSeconds,
		FeeLimitSat:    maxFeeSats,
	}

	stream, err := c.router.SendPaymentV2(ctx, req)
	if err != nil {
		return Payment{}, &TransportError{Err: err}
	}

	for {
		status, err := stream.Recv()
		if err != nil {
			return Payment{}, &TransportError{Err: err}
		}
		switch status.Status {
		case lnrpc.Payment_SUCCEEDED:
			return c.lookupSentPayment(ctx, status.PaymentHash)
		case lnrpc.Payment_FAILED:
			return Payment{}, &KeysendFailedError{Reason: status.FailureReason.String()}
		default:
			continue
		}
	}
}
