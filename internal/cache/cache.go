// Package cache memoizes rewrite results. The cache key covers everything
// that can change the output: the normalized expression text, the audience
// level, and the resolved domain. A cache hit must be byte-identical to a
// fresh rewrite, so entries are only ever written from completed results.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"latex-speech/internal/types"
)

// DefaultTTL bounds how long a cached rewrite survives. Pattern sets change
// rarely; an hour keeps stale entries short-lived without thrashing.
const DefaultTTL = time.Hour

// Cache stores finished rewrite results keyed by expression, audience and
// domain. Implementations must treat a miss as (nil, false, nil), reserving
// the error return for transport failures.
type Cache interface {
	Get(ctx context.Context, key string) (*types.SpeechText, bool, error)
	Set(ctx context.Context, key string, result *types.SpeechText) error
}

// Key derives the cache key for one rewrite request. Whitespace runs in the
// expression collapse so trivially reformatted inputs share an entry.
func Key(expression string, audience types.AudienceLevel, domain types.Domain) string {
	normalized := strings.Join(strings.Fields(expression), " ")
	sum := sha256.Sum256([]byte(normalized + "\x00" + string(audience) + "\x00" + string(domain)))
	return "speech:" + hex.EncodeToString(sum[:])
}
