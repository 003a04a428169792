package boost

import (
	"context"

	"github.com/Podcastindex-org/helipad-sub000/internal/lnclient"
)

// scanResult is what parseCustomRecords pulls out of one HTLC's custom
// records: at most one podcasting-2.0 payload, and at most one
// wallet-identity key/value pair (the first of either kind seen wins,
// matching the reference implementation's single-pass scan).
type scanResult struct {
	tlvJSON     []byte
	haveTLV     bool
	walletKey   uint64
	walletValue string
	haveWallet  bool
}

// parseCustomRecords scans every HTLC's custom records for the podcasting
// TLV and for the first wallet-identity TLV, in HTLC order.
func parseCustomRecords(htlcs []lnclient.HTLC) scanResult {
	var out scanResult
	for _, h := range htlcs {
		if !out.haveTLV {
			if v, ok := h.CustomRecords[TLVPodcasting20]; ok {
				out.tlvJSON = v
				out.haveTLV = true
			}
		}
		if !out.haveWallet {
			for key, val := range h.CustomRecords {
				if IsWalletIdentityTLV(key) {
					out.walletKey = key
					out.walletValue = string(val)
					out.haveWallet = true
					break
				}
			}
		}
		if out.haveTLV && out.haveWallet {
			break
		}
	}
	return out
}

// mapRawBoostToRecord copies the normalized RawBoost fields onto rec,
// leaving fields RawBoost left nil at their zero value. invoiceValueMsat is
// the node-reported value, used whenever the payload's own value_msat is
// absent or zero (a boost app is not required to echo the sats it sent).
func mapRawBoostToRecord(rec *Record, rb *RawBoost, invoiceValueMsat int64) {
	rec.Action = MapAction(str(rb.Action))
	rec.App = str(rb.AppName)
	rec.Message = str(rb.Message)
	rec.Sender = str(rb.SenderName)
	rec.Podcast = str(rb.Podcast)
	rec.Episode = str(rb.Episode)

	if v := u64(rb.ValueMsat); v > 0 {
		rec.ValueMsat = v
	} else {
		rec.ValueMsat = invoiceValueMsat
	}
	if v := u64(rb.ValueMsatTotal); v > 0 {
		rec.ValueMsatTotal = v
	} else {
		rec.ValueMsatTotal = rec.ValueMsat
	}
}

// populateRemoteGuids resolves rb's remote_feed_guid/remote_item_guid pair
// to display names through resolver, when both are present and resolver is
// non-nil. Resolution failures are swallowed: a missing remote name is not
// a reason to drop the boost.
func populateRemoteGuids(ctx context.Context, rec *Record, rb *RawBoost, resolver GuidResolver) {
	if resolver == nil {
		return
	}
	feedGUID, itemGUID := str(rb.RemoteFeedGuid), str(rb.RemoteItemGuid)
	if feedGUID == "" || itemGUID == "" {
		return
	}
	podcast, episode, err := resolver.Resolve(ctx, feedGUID, itemGUID)
	if err != nil {
		return
	}
	rec.RemotePodcast = podcast
	rec.RemoteEpisode = episode
}

// ParseFromInvoice builds a Record from one settled invoice. When the
// invoice carries no podcasting TLV on any HTLC, and fetchMetadata is true,
// comment-based enrichment is attempted through fetcher using the invoice's
// memo; if that too turns up nothing and the memo is non-empty, the invoice
// is still recorded as a bare "Lightning Invoice" boost rather than
// dropped. Returns (nil, nil) when the invoice carries no boost at all and
// no memo to fall back to.
func ParseFromInvoice(ctx context.Context, inv lnclient.Invoice, resolver GuidResolver, fetcher MetadataFetcher, fetchMetadata bool) (*Record, error) {
	rec := &Record{
		Index:      inv.AddIndex,
		Time:       inv.SettleDate,
		ValueMsat:  inv.AmtPaidSat * 1000,
		Action:     ActionUnknown,
		ValueMsatTotal: inv.AmtPaidSat * 1000,
	}

	scan := parseCustomRecords(inv.Htlcs)
	if scan.haveWallet {
		k, v := scan.walletKey, scan.walletValue
		rec.CustomKey, rec.CustomValue = &k, &v
	}

	if scan.haveTLV {
		rb, err := ParseRawBoost(scan.tlvJSON)
		if err != nil {
			// Malformed TLV JSON: keep the raw bytes, fields stay empty.
			rec.TLV = string(scan.tlvJSON)
			return rec, nil
		}
		rec.TLV = rb.raw
		mapRawBoostToRecord(rec, rb, inv.AmtPaidSat*1000)
		populateRemoteGuids(ctx, rec, rb, resolver)
		return rec, nil
	}

	if fetchMetadata && fetcher != nil && inv.Memo != "" {
		if rb, err := fetcher.FetchPaymentMetadata(ctx, inv.Memo); err == nil && rb != nil {
			rec.TLV = rb.raw
			mapRawBoostToRecord(rec, rb, inv.AmtPaidSat*1000)
			populateRemoteGuids(ctx, rec, rb, resolver)
			return rec, nil
		}
	}

	if inv.Memo == "" {
		return nil, nil
	}

	rec.Action = ActionInvoice
	rec.Message = inv.Memo
	rec.App = "Lightning Invoice"
	return rec, nil
}

// ParseFromPayment builds a Record from one successful outgoing payment.
// Unlike invoices, a sent payment with no podcasting TLV and no memo
// equivalent is simply not a boost: callers should skip it.
func ParseFromPayment(ctx context.Context, pmt lnclient.Payment, resolver GuidResolver) (*Record, error) {
	if len(pmt.LastHopCustomRecords) == 0 {
		return nil, nil
	}
	tlvJSON, haveTLV := pmt.LastHopCustomRecords[TLVPodcasting20]
	if !haveTLV {
		return nil, nil
	}

	rec := &Record{
		Index:          pmt.PaymentIndex,
		Time:           pmt.CreationTime,
		ValueMsat:      pmt.ValueMsat,
		ValueMsatTotal: pmt.ValueMsat,
		Action:         ActionUnknown,
		PaymentInfo: &PaymentInfo{
			PaymentHash: pmt.PaymentHash,
			Pubkey:      pmt.Destination,
			FeeMsat:     pmt.FeeMsat,
		},
	}

	for key, val := range pmt.LastHopCustomRecords {
		if IsWalletIdentityTLV(key) {
			rec.PaymentInfo.CustomKey = key
			rec.PaymentInfo.CustomValue = string(val)
			break
		}
	}

	rb, err := ParseRawBoost(tlvJSON)
	if err != nil {
		rec.TLV = string(tlvJSON)
		return rec, nil
	}
	rec.TLV = rb.raw
	mapRawBoostToRecord(rec, rb, pmt.ValueMsat)
	populateRemoteGuids(ctx, rec, rb, resolver)
	return rec, nil
}
