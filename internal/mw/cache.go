package mw

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyCacheWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w bodyCacheWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ResponseCache keeps successful GET responses in memory until they expire
// or a write invalidates them.
type ResponseCache struct {
	store    *cache.Cache
	duration time.Duration

	// mu orders store.Set against Invalidate; generation is bumped by
	// every invalidation.
	mu         sync.Mutex
	generation uint64
}

// NewResponseCache creates a cache whose entries live for duration.
func NewResponseCache(store *cache.Cache, duration time.Duration) *ResponseCache {
	return &ResponseCache{store: store, duration: duration}
}

func (rc *ResponseCache) currentGeneration() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.generation
}

// set stores resp unless an invalidation happened since gen was read.
func (rc *ResponseCache) set(key string, resp cachedResponse, gen uint64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if gen != rc.generation {
		return
	}
	rc.store.Set(key, resp, rc.duration)
}

func (rc *ResponseCache) flush() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.generation++
	rc.store.Flush()
}

// perRequestHeader reports headers that belong to the live request and are
// never replayed from the cache.
func perRequestHeader(k string) bool {
	return k == RequestIDHeader || k == "Vary" || strings.HasPrefix(k, "Access-Control-")
}

// Cache is a middleware for in-memory caching of successful GET responses,
// keyed by request URI.
func (rc *ResponseCache) Cache() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if resp, found := rc.store.Get(key); found {
			cached := resp.(cachedResponse)
			for k, v := range cached.headers {
				if perRequestHeader(k) {
					continue
				}
				c.Writer.Header()[k] = v
			}
			c.Writer.Header().Set("X-Cache", "HIT")
			c.Writer.WriteHeader(cached.status)
			_, _ = c.Writer.Write(cached.body)
			c.Abort()
			return
		}

		gen := rc.currentGeneration()
		blw := &bodyCacheWriter{body: bytes.NewBuffer(nil), ResponseWriter: c.Writer}
		c.Writer = blw

		c.Next()

		if blw.Status() >= 200 && blw.Status() < 300 {
			rc.set(key, cachedResponse{
				status:  blw.Status(),
				headers: blw.Header().Clone(),
				body:    bytes.Clone(blw.body.Bytes()),
			}, gen)
		}
	}
}

// Invalidate flushes the cache after a mutation succeeds. Reads that were
// already running when it fired do not store their results.
func (rc *ResponseCache) Invalidate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if s := c.Writer.Status(); s >= 200 && s < 300 {
			rc.flush()
		}
	}
}
