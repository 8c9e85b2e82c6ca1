package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/metrics"
	"movies-backend/internal/shared"
	"movies-backend/internal/shared/outputcache"
	"movies-backend/pkg/cache"
)

// bodyCaptureWriter tees the response body into buf.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	buf *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// OutputCache serves GET responses from store, keyed by path, sorted query, user and api version.
// Only 200 responses are stored; entries are dropped together by evicting tag.
func OutputCache(store cache.Cache, tag string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := outputcache.Key(tag,
			c.Request.URL.Path,
			c.Request.URL.Query().Encode(),
			userKey(c),
			c.GetString(shared.ContextKeyAPIVersion),
		)

		var entry outputcache.Entry
		found, err := store.Get(ctx, key, &entry)
		if err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("[OutputCache] read failed")
		}
		if found {
			metrics.CacheHits.WithLabelValues(tag).Inc()
			c.Header("X-Cache", "HIT")
			c.Data(entry.Status, entry.ContentType, entry.Body)
			c.Abort()
			return
		}
		metrics.CacheMisses.WithLabelValues(tag).Inc()

		writer := &bodyCaptureWriter{ResponseWriter: c.Writer, buf: &bytes.Buffer{}}
		c.Writer = writer
		c.Header("X-Cache", "MISS")

		c.Next()

		if writer.Status() != http.StatusOK {
			return
		}
		entry = outputcache.Entry{
			Status:      writer.Status(),
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.buf.Bytes(),
		}
		if err := store.Set(ctx, key, entry, ttl); err != nil {
			log.Warn().Err(err).Str("tag", tag).Msg("[OutputCache] write failed")
		}
	}
}

func userKey(c *gin.Context) string {
	if id := GetUserID(c); id != nil {
		return id.String()
	}
	return "anonymous"
}
