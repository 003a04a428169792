// Package guidcache resolves PodcastIndex feed/episode GUID pairs to
// display names, caching results in an LRU and collapsing concurrent
// lookups of the same pair into a single upstream request.
package guidcache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Podcastindex-org/helipad-sub000/pkg/logger"
)

const apiURL = "https://api.podcastindex.org/api/1.0/value/byepisodeguid"

// Entry is a resolved feed/episode GUID pair, cached by "<feedGUID>_<itemGUID>".
type Entry struct {
	FeedGUID  string
	ItemGUID  string
	Podcast   *string
	Episode   *string
}

// Cache wraps an LRU of Entry with singleflight deduplication over the
// PodcastIndex lookup, so a burst of boosts referencing the same remote
// episode only issues the API call once.
type Cache struct {
	lru        *lru.Cache[string, Entry]
	group      singleflight.Group
	httpClient *http.Client
	appVersion string
}

// New builds a Cache holding up to size entries. httpClient may be nil, in
// which case a client with a 10s timeout is used.
func New(size int, appVersion string, httpClient *http.Client) (*Cache, error) {
	c, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("guidcache: new lru: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Cache{lru: c, httpClient: httpClient, appVersion: appVersion}, nil
}

func cacheKey(feedGUID, itemGUID string) string {
	return feedGUID + "_" + itemGUID
}

// Resolve implements boost.GuidResolver: it returns the display names for
// feedGUID/itemGUID, fetching from PodcastIndex on a cache miss.
func (c *Cache) Resolve(ctx context.Context, feedGUID, itemGUID string) (*string, *string, error) {
	key := cacheKey(feedGUID, itemGUID)

	if entry, ok := c.lru.Get(key); ok {
		logger.Debug("remote podcast/episode from cache", zap.String("key", key))
		return entry.Podcast, entry.Episode, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		entry, err := c.fetch(ctx, feedGUID, itemGUID)
		if err != nil {
			return Entry{}, err
		}
		c.lru.Add(key, entry)
		logger.Debug("remote podcast/episode from api", zap.String("key", key))
		return entry, nil
	})
	if err != nil {
		return nil, nil, err
	}
	entry := v.(Entry)
	return entry.Podcast, entry.Episode, nil
}

type podcastIndexResponse struct {
	Status string `json:"status"`
	Query  struct {
		PodcastGUID string `json:"podcastguid"`
		EpisodeGUID string `json:"episodeguid"`
	} `json:"query"`
	Value struct {
		FeedTitle string `json:"feedTitle"`
		Title     string `json:"title"`
	} `json:"value"`
}

func (c *Cache) fetch(ctx context.Context, feedGUID, itemGUID string) (Entry, error) {
	entry := Entry{FeedGUID: feedGUID, ItemGUID: itemGUID}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return entry, fmt.Errorf("guidcache: build request: %w", err)
	}
	q := req.URL.Query()
	q.Set("podcastguid", feedGUID)
	q.Set("episodeguid", itemGUID)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", fmt.Sprintf("Helipad/%s", c.appVersion))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return entry, fmt.Errorf("guidcache: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entry, fmt.Errorf("guidcache: unexpected status %d", resp.StatusCode)
	}

	var body podcastIndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return entry, fmt.Errorf("guidcache: decode response: %w", err)
	}

	if body.Status != "true" {
		return entry, nil // not found; cache the empty result like the rest
	}

	if body.Query.PodcastGUID != "" {
		entry.FeedGUID = body.Query.PodcastGUID
	}
	if body.Query.EpisodeGUID != "" {
		entry.ItemGUID = body.Query.EpisodeGUID
	}
	podcast, episode := body.Value.FeedTitle, body.Value.Title
	entry.Podcast, entry.Episode = &podcast, &episode

	return entry, nil
}
