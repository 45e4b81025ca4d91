package platform

import (
	"context"
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/stage/pkg/core"
)

// FlushMatching commits only the staged keys whose "<collection>/<key>" path
// matches pattern (doublestar syntax, e.g. "users/**"). The session's commit
// hooks run as for a full commit; unmatched keys stay staged. Results are
// sorted by collection name.
func FlushMatching(ctx context.Context, s *core.Session, pattern string) ([]core.CollectionResult, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}
	return s.CommitMatching(ctx, func(collection, key string) bool {
		ok, _ := doublestar.Match(pattern, collection+"/"+key)
		return ok
	})
}
