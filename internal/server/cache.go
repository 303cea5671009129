package server

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// cachedResponse is a successful response body.
type cachedResponse struct {
	status int
	header http.Header
	body   []byte
}

// responseCache holds GET responses keyed by path and sorted query string.
// Every purge starts a new generation; responses computed under an older
// generation are never stored.
type responseCache struct {
	mu    sync.Mutex
	gen   uint64
	items *ttlcache.Cache[string, cachedResponse]
}

func newResponseCache() *responseCache {
	return &responseCache{
		items: ttlcache.New[string, cachedResponse](
			ttlcache.WithDisableTouchOnHit[string, cachedResponse](),
		),
	}
}

func (c *responseCache) get(key string) (cachedResponse, bool) {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		return cachedResponse{}, false
	}
	return item.Value(), true
}

// generation returns the current generation, to be passed back to put.
func (c *responseCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// put stores e for ttl unless the cache was purged since gen was read.
func (c *responseCache) put(key string, e cachedResponse, ttl time.Duration, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.items.Set(key, e, ttl)
	return true
}

func (c *responseCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.items.DeleteAll()
}

func (c *responseCache) len() int {
	c.items.DeleteExpired()
	return c.items.Len()
}

// captureWriter records a response while passing it through.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (w *captureWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// cached serves repeated requests from the cache for ttl. Only 200 and 204
// responses are stored, so errors are retried on the next request.
func (s *Server) cached(ttl time.Duration, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path + "?" + r.URL.Query().Encode()
		if e, ok := s.cache.get(key); ok {
			for k, v := range e.header {
				w.Header()[k] = v
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(e.status)
			_, _ = w.Write(e.body)
			return
		}

		gen := s.cache.generation()
		cw := &captureWriter{ResponseWriter: w}
		h(cw, r)
		if cw.status == http.StatusOK || cw.status == http.StatusNoContent {
			s.cache.put(key, cachedResponse{
				status: cw.status,
				header: w.Header().Clone(),
				body:   cw.buf.Bytes(),
			}, ttl, gen)
		}
	}
}
