package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Computed balance views are expensive enough to cache briefly, and the
// full rebuild-per-request model makes invalidation trivial: any ledger
// write for a group drops that group's entry.

const balanceTTL = 10 * time.Minute

func balanceKey(groupID uuid.UUID) string {
	return "balances:" + groupID.String()
}

// GetCachedBalances loads a cached balance summary into dest. Returns
// false on a miss or when Redis is unavailable.
func GetCachedBalances(ctx context.Context, groupID uuid.UUID, dest interface{}) bool {
	if Redis == nil {
		return false
	}

	raw, err := Redis.Get(ctx, balanceKey(groupID)).Bytes()
	if err != nil {
		return false
	}

	return json.Unmarshal(raw, dest) == nil
}

// CacheBalances stores a computed balance summary for a group.
func CacheBalances(ctx context.Context, groupID uuid.UUID, summary interface{}) {
	if Redis == nil {
		return
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return
	}

	Redis.Set(ctx, balanceKey(groupID), raw, balanceTTL)
}

// InvalidateBalances drops a group's cached balance view after an
// expense or settlement write.
func InvalidateBalances(ctx context.Context, groupID uuid.UUID) {
	if Redis == nil {
		return
	}

	Redis.Del(ctx, balanceKey(groupID))
}
