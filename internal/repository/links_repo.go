package repository

import "context"

// LinksRepo answers the relationship resolver's indirect-ownership lookups
// with one query per call: "select <result> from <through> where <match> =
// value", via being the link column the traversal follows. Implementations
// must never expand this into per-row lookups.
type LinksRepo interface {
	ResolveIndirectIDs(ctx context.Context, through, via, match, value, result string) ([]string, error)
}
