package boost

// PaymentInfo is present on a BoostRecord iff the record describes an
// outgoing payment rather than a received invoice.
type PaymentInfo struct {
	PaymentHash string  `json:"payment_hash"`
	Pubkey      string  `json:"pubkey"`
	CustomKey   uint64  `json:"custom_key,omitempty"`
	CustomValue string  `json:"custom_value,omitempty"`
	FeeMsat     int64   `json:"fee_msat"`
	ReplyToIdx  *uint64 `json:"reply_to_idx,omitempty"`
}

// Record is the central entity: one settled incoming invoice carrying a
// boost, or one successful outgoing payment carrying a boost.
type Record struct {
	Index uint64 `json:"index"`
	Time  int64  `json:"time"`

	ValueMsat      int64 `json:"value_msat"`
	ValueMsatTotal int64 `json:"value_msat_total"`

	Action ActionType `json:"action"`

	Sender  string `json:"sender"`
	App     string `json:"app"`
	Message string `json:"message"`
	Podcast string `json:"podcast"`
	Episode string `json:"episode"`

	// TLV is the raw TLV payload, byte-preserved from the node. Never
	// rewritten once set from the node's custom record.
	TLV string `json:"tlv"`

	RemotePodcast *string `json:"remote_podcast,omitempty"`
	RemoteEpisode *string `json:"remote_episode,omitempty"`

	ReplySent bool `json:"reply_sent"`

	CustomKey   *uint64 `json:"custom_key,omitempty"`
	CustomValue *string `json:"custom_value,omitempty"`

	PaymentInfo *PaymentInfo `json:"payment_info,omitempty"`
}

// Sats returns the logical total value in satoshis, used by trigger amount
// predicates and the legacy numerology table.
func (r *Record) Sats() int64 {
	v := r.ValueMsatTotal
	if v < 0 {
		v = 0
	}
	return v / 1000
}
