// Package outputcache stores rendered GET responses under a tag so writes can evict them together.
package outputcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rs/zerolog/log"

	"movies-backend/internal/metrics"
	"movies-backend/pkg/cache"
)

// Entry is one cached response.
type Entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"contentType"`
	Body        []byte `json:"body"`
}

// Key builds "<tag>:<sha256 of parts>". The hash keeps '/' out of keys so tag globs match.
func Key(tag string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return tag + ":" + hex.EncodeToString(sum[:])
}

// Evict drops every entry under tag. Failures are logged, not returned:
// the write that triggered the eviction already succeeded.
func Evict(ctx context.Context, c cache.Cache, tag string) {
	if c == nil {
		return
	}
	if err := cache.EvictTag(context.WithoutCancel(ctx), c, tag); err != nil {
		log.Error().Err(err).Str("tag", tag).Msg("[OutputCache] eviction failed")
		return
	}
	metrics.CacheEvictions.WithLabelValues(tag).Inc()
}
