package ports

import (
	"fmt"

	"pollboard/domain/core/valueobjects"
)

// PollCacheKey is the cache key for a single poll's read model. Writers
// invalidate this key after every successful mutation so reads stay
// consistent with the store.
func PollCacheKey(id valueobjects.PollID) string {
	return fmt.Sprintf("poll:%s", id.String())
}
