package boost

import "context"

// GuidResolver resolves a remote podcast/episode GUID pair (carried on a
// boost by apps that cross-post between feeds) to display names. It is
// implemented by internal/guidcache; defined here to keep this package free
// of an import on the HTTP/cache machinery.
type GuidResolver interface {
	Resolve(ctx context.Context, feedGUID, itemGUID string) (podcast, episode *string, err error)
}

// MetadataFetcher fetches an enrichment RawBoost for a memo-only invoice
// (RSS Payment / Podcast Guru metadata lookup). Implemented by
// internal/metadata; defined here for the same reason as GuidResolver.
type MetadataFetcher interface {
	FetchPaymentMetadata(ctx context.Context, comment string) (*RawBoost, error)
}
