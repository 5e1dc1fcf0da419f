package kodx

import (
	"context"
	"log/slog"
)

// lookup is one tier of an ordered resolution strategy. A nil result means
// the tier found nothing; a non-nil error means the tier itself was
// unavailable. Both hand control to the next tier.
type lookup[T any] func(ctx context.Context) (*T, error)

// firstMatch runs tiers in priority order and returns the first non-nil
// result, or nil when every tier is exhausted. Tier errors are logged at
// debug and swallowed; an unavailable index is a reason to fall back, not
// an error the caller sees.
func firstMatch[T any](ctx context.Context, logger *slog.Logger, what string, tiers ...lookup[T]) *T {
	for i, tier := range tiers {
		v, err := tier(ctx)
		if err != nil {
			logger.Debug("lookup tier unavailable", "what", what, "tier", i, "error", err)
			continue
		}
		if v != nil {
			return v
		}
	}
	return nil
}
