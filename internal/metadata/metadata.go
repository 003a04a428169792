// Package metadata enriches a memo-only Lightning invoice with boost
// metadata pulled from the sender's own service, for senders that cannot
// attach a podcasting TLV directly (RSS Payment and Podcast Guru).
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/Podcastindex-org/helipad-sub000/internal/boost"
)

var (
	rssPaymentRe = regexp.MustCompile(`rss::payment::\w+ (https://fountain\.fm/\S+)`)
	podcastGuruRe = regexp.MustCompile(`V4V: (https://boost\.podcastguru\.io/\S+)`)
)

// Fetcher implements boost.MetadataFetcher, restricted to a set of
// allowed hosts (SettingsRecord.metadata_whitelist) that callers must
// configure; an empty whitelist means no host restriction.
type Fetcher struct {
	httpClient *http.Client
	whitelist  map[string]bool
}

// New builds a Fetcher. httpClient may be nil, in which case a client with
// a 10s timeout is used. whitelist entries are hostnames; a nil/empty
// whitelist allows any host.
func New(httpClient *http.Client, whitelist []string) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	var set map[string]bool
	if len(whitelist) > 0 {
		set = make(map[string]bool, len(whitelist))
		for _, h := range whitelist {
			set[h] = true
		}
	}
	return &Fetcher{httpClient: httpClient, whitelist: set}
}

func (f *Fetcher) allowed(rawURL string) bool {
	if f.whitelist == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return f.whitelist[u.Hostname()]
}

// FetchPaymentMetadata inspects comment for a known payment-metadata
// marker (an RSS Payment "rss::payment::" directive or a Podcast Guru
// "V4V:" directive) and fetches the referenced boost payload. Returns
// (nil, nil) when comment carries no recognized marker.
func (f *Fetcher) FetchPaymentMetadata(ctx context.Context, comment string) (*boost.RawBoost, error) {
	if m := rssPaymentRe.FindStringSubmatch(comment); m != nil {
		return f.fetchRSSPayment(ctx, m[1])
	}
	if m := podcastGuruRe.FindStringSubmatch(comment); m != nil {
		return f.fetchPodcastGuruPayment(ctx, m[1])
	}
	return nil, nil
}

type rssPayment struct {
	Action         *string               `json:"action"`
	AppName        *string               `json:"app_name"`
	FeedTitle      *string               `json:"feed_title"`
	ItemTitle      *string               `json:"item_title"`
	Message        *string               `json:"message"`
	RemoteFeedGuid *string               `json:"remote_feed_guid"`
	RemoteItemGuid *string               `json:"remote_item_guid"`
	SenderName     *string               `json:"sender_name"`
	ValueMsatTotal *boost.OptionalUint64 `json:"value_msat_total"`
}

// fetchRSSPayment issues a HEAD request to url and decodes the boost
// payload out of its X-Rss-Payment response header.
func (f *Fetcher) fetchRSSPayment(ctx context.Context, rawURL string) (*boost.RawBoost, error) {
	if !f.allowed(rawURL) {
		return nil, fmt.Errorf("metadata: host not whitelisted: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata: build rss payment request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata: rss payment request: %w", err)
	}
	defer resp.Body.Close()

	header := resp.Header.Get("X-Rss-Payment")
	if header == "" {
		return nil, fmt.Errorf("metadata: x-rss-payment header not found")
	}
	decoded, err := url.QueryUnescape(header)
	if err != nil {
		return nil, fmt.Errorf("metadata: decode x-rss-payment header: %w", err)
	}

	var rp rssPayment
	if err := json.Unmarshal([]byte(decoded), &rp); err != nil {
		return nil, fmt.Errorf("metadata: parse rss payment: %w", err)
	}

	rb := &boost.RawBoost{
		Action:         rp.Action,
		AppName:        rp.AppName,
		Podcast:        rp.FeedTitle,
		Episode:        rp.ItemTitle,
		Message:        rp.Message,
		RemoteFeedGuid: rp.RemoteFeedGuid,
		RemoteItemGuid: rp.RemoteItemGuid,
		SenderName:     rp.SenderName,
		ValueMsatTotal: rp.ValueMsatTotal,
	}
	rb.SetRaw(decoded)
	return rb, nil
}

type podcastGuruPayment struct {
	MetadataPayload *string `json:"metadata_payload"`
}

// fetchPodcastGuruPayment issues a GET request to url and decodes the
// boost payload out of the metadata_payload field of the JSON body.
func (f *Fetcher) fetchPodcastGuruPayment(ctx context.Context, rawURL string) (*boost.RawBoost, error) {
	if !f.allowed(rawURL) {
		return nil, fmt.Errorf("metadata: host not whitelisted: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("metadata: build podcast guru request: %w", err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("metadata: podcast guru request: %w", err)
	}
	defer resp.Body.Close()

	var body podcastGuruPayment
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("metadata: decode podcast guru response: %w", err)
	}
	if body.MetadataPayload == nil {
		return nil, nil
	}

	rb, err := boost.ParseRawBoost([]byte(*body.MetadataPayload))
	if err != nil {
		return nil, fmt.Errorf("metadata: parse podcast guru payload: %w", err)
	}
	return rb, nil
}
