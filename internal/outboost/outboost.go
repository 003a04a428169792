package outboost

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/fiatjaf/go-lnurl"

	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
)

// TLVPodcasting20 is the podcasting 2.0 boostagram TLV type, duplicated
// from internal/boost to avoid a dependency cycle (boost imports lnclient
// for its parse path; outboost is lnclient's outbound counterpart and has
// no reason to import boost).
const TLVPodcasting20 = 7629169

// SendBoost pays sats to target, attaching tlvJSON as the podcasting 2.0
// payload. Direct keysend targets are paid immediately; lnurlp targets
// first request a bolt11 invoice from the recipient's callback, which is
// then paid like any other invoice (no custom records survive an
// LNURL-pay hop, so comment is the only metadata a recipient sees).
func SendBoost(ctx context.Context, client lnclient.Client, resolver *Resolver, target Target, sats int64, tlvJSON []byte, senderName string) (lnclient.Payment, error) {
	if target.Keysend != nil {
		return sendKeysendBoost(ctx, client, *target.Keysend, sats, tlvJSON)
	}
	if target.Lnurlp != nil {
		return sendLnurlpBoost(ctx, client, resolver, *target.Lnurlp, sats, senderName)
	}
	return lnclient.Payment{}, fmt.Errorf("outboost: target resolves to neither keysend nor lnurlp")
}

func sendKeysendBoost(ctx context.Context, client lnclient.Client, kt KeysendTarget, sats int64, tlvJSON []byte) (lnclient.Payment, error) {
	records := map[uint64][]byte{TLVPodcasting20: tlvJSON}
	if kt.CustomKey != 0 && kt.CustomValue != "" {
		records[kt.CustomKey] = []byte(kt.CustomValue)
	}
	return client.Keysend(ctx, kt.Pubkey, sats, records)
}

func sendLnurlpBoost(ctx context.Context, client lnclient.Client, r *Resolver, lt LnurlpTarget, sats int64, senderName string) (lnclient.Payment, error) {
	if msat := sats * 1000; msat < lt.MinSendableMsat || msat > lt.MaxSendableMsat {
		return lnclient.Payment{}, fmt.Errorf("outboost: %d sats is outside the recipient's sendable range [%d, %d] msat", sats, lt.MinSendableMsat, lt.MaxSendableMsat)
	}

	bolt11, err := requestLnurlpInvoice(ctx, r, lt, sats, senderName)
	if err != nil {
		return lnclient.Payment{}, err
	}
	return client.PayInvoice(ctx, bolt11, 0)
}

// requestLnurlpInvoice calls lt's callback URL to exchange an amount (and
// optional payer name) for a payable bolt11 invoice, per LUD-06/LUD-18.
func requestLnurlpInvoice(ctx context.Context, r *Resolver, lt LnurlpTarget, sats int64, senderName string) (string, error) {
	callback, err := url.Parse(lt.Callback)
	if err != nil {
		return "", fmt.Errorf("outboost: invalid lnurlp callback %q: %w", lt.Callback, err)
	}

	q := callback.Query()
	q.Set("amount", fmt.Sprintf("%d", sats*1000))
	if lt.PayerDataName && senderName != "" {
		payerData, _ := json.Marshal(map[string]string{"name": senderName})
		q.Set("payerdata", string(payerData))
	}
	callback.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, callback.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("outboost: lnurlp callback request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("outboost: read lnurlp callback response: %w", err)
	}

	var values lnurl.LNURLPayValues
	if err := json.Unmarshal(body, &values); err != nil {
		return "", fmt.Errorf("outboost: decode lnurlp callback response: %w", err)
	}
	if values.Status == "ERROR" {
		return "", fmt.Errorf("outboost: lnurlp callback error: %s", values.Reason)
	}
	if values.PR == "" {
		return "", fmt.Errorf("outboost: lnurlp callback returned no invoice")
	}
	return values.PR, nil
}
