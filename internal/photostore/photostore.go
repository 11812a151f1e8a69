package photostore

import (
	"context"
	"io"
	"strings"
)

// Kinds prefix stored photo keys so the files are attributable on disk.
const (
	KindListing  = "listing"
	KindCategory = "category"
	KindHero     = "hero"
)

// RefPrefix is the public URL path photos are served under. Stored image
// references are either such URLs or external ones (e.g. the seed category
// photos), which carry no storage key.
const RefPrefix = "/photos/"

type PhotoStore interface {
	Save(ctx context.Context, kind, mimeType string, r io.Reader) (storageKey string, err error)
	Get(ctx context.Context, storageKey string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, storageKey string) error
}

// RefFromKey turns a storage key into the reference the catalog stores.
func RefFromKey(key string) string {
	return RefPrefix + key
}

// KeyFromRef extracts the storage key from a local photo reference. External
// URLs return ok = false.
func KeyFromRef(ref string) (string, bool) {
	if !strings.HasPrefix(ref, RefPrefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, RefPrefix)
	return key, key != ""
}
