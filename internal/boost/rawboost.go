package boost

import (
	"encoding/json"
	"math"
	"strconv"
)

// OptionalUint64 decodes the loose value_msat/value_msat_total coercion: a
// JSON number or a string-of-digits both succeed, an empty string or any
// other shape yields an absent value -- except a non-numeric, non-string
// JSON value, which the reference implementation coerces to Some(0) rather
// than None.
type OptionalUint64 struct {
	Value *uint64
}

func (o *OptionalUint64) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		o.Value = nil
	case string:
		if v == "" {
			o.Value = nil
			return nil
		}
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			o.Value = nil
			return nil
		}
		o.Value = &n
	case float64:
		if v < 0 || v != math.Trunc(v) {
			o.Value = nil
			return nil
		}
		n := uint64(v)
		o.Value = &n
	default:
		zero := uint64(0)
		o.Value = &zero
	}
	return nil
}

// RawBoost is the normalized shape of TLV 7629169's JSON payload (and of the
// equivalent RSS-payment / Podcast Guru metadata payloads, which carry the
// same field set).
type RawBoost struct {
	Action         *string         `json:"action"`
	AppName        *string         `json:"app_name"`
	Message        *string         `json:"message"`
	SenderName     *string         `json:"sender_name"`
	Podcast        *string         `json:"podcast"`
	Episode        *string         `json:"episode"`
	ValueMsat      *OptionalUint64 `json:"value_msat"`
	ValueMsatTotal *OptionalUint64 `json:"value_msat_total"`
	RemoteFeedGuid *string         `json:"remote_feed_guid"`
	RemoteItemGuid *string         `json:"remote_item_guid"`

	// raw holds the verbatim JSON text this RawBoost was parsed from.
	raw string
}

// ParseRawBoost decodes raw TLV/metadata JSON bytes into a RawBoost,
// retaining the verbatim text for BoostRecord.TLV. Returns an error only on
// malformed JSON; per §4.2, the caller falls back to an empty-fields record
// with the raw tlv preserved rather than hard-failing.
func ParseRawBoost(data []byte) (*RawBoost, error) {
	var rb RawBoost
	if err := json.Unmarshal(data, &rb); err != nil {
		return nil, err
	}
	rb.raw = string(data)
	return &rb, nil
}

// Raw returns the verbatim JSON text the RawBoost was parsed from, or the
// text an enrichment fetcher synthesized for it.
func (rb *RawBoost) Raw() string { return rb.raw }

// SetRaw sets the verbatim text stored on a RawBoost built by hand (an
// enrichment fetcher outside this package assembling one from a
// non-podcasting-TLV payload).
func (rb *RawBoost) SetRaw(s string) { rb.raw = s }

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func u64(o *OptionalUint64) int64 {
	if o == nil || o.Value == nil {
		return 0
	}
	return int64(*o.Value)
}
