package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"flowcrm-data/internal/store"

	"go.uber.org/zap"
)

// LinkResolver resolves ownership through one level of indirection, e.g.
// "which agent ids belong to this user" before filtering conversations by
// assignee. Implementations must answer with a single auxiliary query (no
// per-row lookups) and an empty result must stay empty; the caller turns it
// into a match-nothing predicate.
type LinkResolver interface {
	ResolveIndirectIDs(ctx context.Context, through, via, match, value, result string) ([]string, error)
}

// CachedLinkResolver wraps a LinkResolver with a short-TTL redis cache. The
// resolved sets change only when assignments change, so a minute of staleness
// is acceptable for list views.
type CachedLinkResolver struct {
	inner  LinkResolver
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedLinkResolver(inner LinkResolver, kv store.KV, ttl time.Duration, logger *zap.Logger) *CachedLinkResolver {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedLinkResolver{inner: inner, kv: kv, ttl: ttl, logger: logger}
}

func (r *CachedLinkResolver) ResolveIndirectIDs(ctx context.Context, through, via, match, value, result string) ([]string, error) {
	key := strings.Join([]string{"links", through, via, match, value, result}, ":")

	if cached, err := r.kv.Get(ctx, key); err == nil {
		var ids []string
		if err := json.Unmarshal([]byte(cached), &ids); err == nil {
			return ids, nil
		}
		// unparseable entry: drop it and fall through to the source
		_ = r.kv.Delete(ctx, key)
	} else if err != store.ErrMiss {
		// cache outage must not break list queries
		r.logger.Warn("link cache read failed", zap.String("key", key), zap.Error(err))
	}

	ids, err := r.inner.ResolveIndirectIDs(ctx, through, via, match, value, result)
	if err != nil {
		return nil, fmt.Errorf("resolve %s via %s: %w", through, via, err)
	}

	if encoded, err := json.Marshal(ids); err == nil {
		if err := r.kv.Set(ctx, key, string(encoded), r.ttl); err != nil {
			r.logger.Warn("link cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return ids, nil
}
