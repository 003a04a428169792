// Package outboost resolves a Lightning address (or bare node pubkey) to a
// payable destination and sends a podcasting 2.0 boost to it, either as a
// direct keysend payment or, when the recipient has no keysend endpoint,
// by paying a bolt11 invoice requested over LNURL-pay.
package outboost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Target is the resolved form of one "recipient@host" (or bare pubkey)
// destination: exactly one of Keysend or Lnurlp is set.
type Target struct {
	Keysend *KeysendTarget
	Lnurlp  *LnurlpTarget
}

// KeysendTarget sends sats directly as a keysend payment to Pubkey,
// tagging the payment with a wallet-identity TLV when the recipient's
// well-known endpoint (or the caller) supplied one.
type KeysendTarget struct {
	Pubkey      string
	CustomKey   uint64
	CustomValue string
}

// LnurlpTarget requests a bolt11 invoice from an LNURL-pay callback before
// a boost can be paid to this recipient.
type LnurlpTarget struct {
	Callback       string
	MinSendableMsat int64
	MaxSendableMsat int64
	CommentAllowed int
	PayerDataName  bool
}

type Resolver struct {
	httpClient *http.Client
}

// NewResolver builds a Target resolver using a short-timeout HTTP client,
// matching the teacher's external-API-client idiom of a dedicated client
// per concern rather than sharing http.DefaultClient.
func NewResolver() *Resolver {
	return &Resolver{httpClient: &http.Client{Timeout: 10 * time.Second}}
}

// Resolve maps address to a payable Target. A bare pubkey (no "@") always
// resolves to a KeysendTarget using customKey/customValue as-is. An
// address with a host is probed first against its well-known keysend
// endpoint, then its well-known lnurlp endpoint; neither responding is an
// error.
func (r *Resolver) Resolve(ctx context.Context, address string, customKey uint64, customValue string) (Target, error) {
	if !strings.Contains(address, "@") {
		return Target{Keysend: &KeysendTarget{Pubkey: address, CustomKey: customKey, CustomValue: customValue}}, nil
	}

	username, hostname, err := splitLNAddress(address)
	if err != nil {
		return Target{}, err
	}

	if kt, err := r.resolveKeysend(ctx, username, hostname); err != nil {
		return Target{}, err
	} else if kt != nil {
		return Target{Keysend: kt}, nil
	}

	if lt, err := r.resolveLnurlp(ctx, username, hostname); err != nil {
		return Target{}, err
	} else if lt != nil {
		return Target{Lnurlp: lt}, nil
	}

	return Target{}, fmt.Errorf("outboost: %s has neither a keysend nor an lnurlp well-known endpoint", address)
}

func splitLNAddress(address string) (username, hostname string, err error) {
	parts := strings.SplitN(address, "@", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("outboost: invalid lightning address %q", address)
	}
	return parts[0], parts[1], nil
}

type keysendAddressResponse struct {
	Status     string                       `json:"status"`
	Tag        string                       `json:"tag"`
	Pubkey     string                       `json:"pubkey"`
	CustomData []keysendAddressCustomDatum `json:"customData"`
}

type keysendAddressCustomDatum struct {
	CustomKey   string `json:"customKey"`
	CustomValue string `json:"customValue"`
}

// resolveKeysend probes address's well-known keysend endpoint, returning
// nil (not an error) on a 404 -- the recipient simply has no keysend
// support and the caller should fall back to lnurlp.
func (r *Resolver) resolveKeysend(ctx context.Context, username, hostname string) (*KeysendTarget, error) {
	url := fmt.Sprintf("https://%s/.well-known/keysend/%s", hostname, username)

	body, ok, err := r.fetch(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	var data keysendAddressResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("outboost: decode keysend address response: %w", err)
	}

	kt := &KeysendTarget{Pubkey: data.Pubkey}
	if len(data.CustomData) > 0 {
		key, err := strconv.ParseUint(data.CustomData[0].CustomKey, 10, 64)
		if err == nil {
			kt.CustomKey = key
			kt.CustomValue = data.CustomData[0].CustomValue
		}
	}
	return kt, nil
}

type lnurlpPayerData struct {
	Name *struct{} `json:"name,omitempty"`
}

type lnurlpResponse struct {
	Status         string           `json:"status"`
	Tag            string           `json:"tag"`
	CommentAllowed int              `json:"commentAllowed"`
	Callback       string           `json:"callback"`
	MinSendable    int64            `json:"minSendable"`
	MaxSendable    int64            `json:"maxSendable"`
	PayerData      *lnurlpPayerData `json:"payerData"`
}

// resolveLnurlp probes address's well-known lnurlp endpoint, returning nil
// (not an error) on a 404.
func (r *Resolver) resolveLnurlp(ctx context.Context, username, hostname string) (*LnurlpTarget, error) {
	url := fmt.Sprintf("https://%s/.well-known/lnurlp/%s", hostname, username)

	body, ok, err := r.fetch(ctx, url)
	if err != nil || !ok {
		return nil, err
	}

	var data lnurlpResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("outboost: decode lnurlp response: %w", err)
	}

	return &LnurlpTarget{
		Callback:        data.Callback,
		MinSendableMsat: data.MinSendable,
		MaxSendableMsat: data.MaxSendable,
		CommentAllowed:  data.CommentAllowed,
		PayerDataName:   data.PayerData != nil && data.PayerData.Name != nil,
	}, nil
}

// fetch GETs url, returning ok=false (no error) on a 404 and an error on
// any other non-2xx status.
func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("outboost: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("outboost: %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("outboost: read %s: %w", url, err)
	}
	return body, true, nil
}
