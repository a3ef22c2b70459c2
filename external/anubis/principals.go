package anubis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/release-league/internal/domain/user"
	"github.com/riskibarqy/release-league/internal/platform/cache"
)

// principalCache keys introspection results by token digest so raw tokens
// never sit in memory past the request. Concurrent lookups of one token
// share a single introspection call.
type principalCache struct {
	store      *cache.Store[user.Principal]
	maxEntries int
	disabled   bool
}

// A negative ttl keeps call sharing but caches nothing. Once maxEntries is
// reached and a sweep frees nothing, new principals are not retained.
func newPrincipalCache(ttl time.Duration, maxEntries int, clock clockwork.Clock) *principalCache {
	return &principalCache{
		store:      cache.NewStore[user.Principal](ttl, clock),
		maxEntries: maxEntries,
		disabled:   ttl <= 0,
	}
}

func (c *principalCache) resolve(ctx context.Context, token string, introspect func(context.Context) (user.Principal, error)) (user.Principal, error) {
	key := tokenDigest(token)
	if !c.disabled {
		if p, ok := c.store.Peek(key); ok {
			return p, nil
		}
	}

	principal, err := c.store.Load(ctx, key, func(ctx context.Context) (user.Principal, error) {
		if c.maxEntries > 0 && c.store.Len() >= c.maxEntries {
			c.store.Sweep()
		}
		return introspect(ctx)
	})
	if err != nil {
		return user.Principal{}, err
	}
	if c.disabled || (c.maxEntries > 0 && c.store.Len() > c.maxEntries) {
		c.store.Forget(key)
	}
	return principal, nil
}

func tokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// introspectEndpoint joins the configured base and path. An absolute path
// wins over the base.
func introspectEndpoint(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if u, err := url.Parse(path); err == nil && u.IsAbs() {
		return path
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(path, "/")
}
