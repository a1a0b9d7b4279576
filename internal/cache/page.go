package cache

import (
	"bytes"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Invalidator drops cached pages whose path starts with one of the prefixes.
type Invalidator interface {
	Invalidate(prefixes ...string)
}

type entry struct {
	header  http.Header
	body    []byte
	expires time.Time
}

// PageCache caches successful GET responses by request URI.
// gen counts invalidations; a response rendered across one is not stored.
type PageCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	store map[string]entry
	gen   uint64
	now   func() time.Time
}

func NewPageCache(ttl time.Duration) *PageCache {
	return &PageCache{
		ttl:   ttl,
		store: make(map[string]entry),
		now:   time.Now,
	}
}

func (c *PageCache) get(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.store[key]
	if !ok || c.now().After(e.expires) {
		return entry{}, false
	}
	return e, true
}

func (c *PageCache) set(key string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = e
}

func (c *PageCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// setIfCurrent stores e unless Invalidate ran after gen was read.
func (c *PageCache) setIfCurrent(key string, e entry, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.store[key] = e
	return true
}

func (c *PageCache) Invalidate(prefixes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	for key := range c.store {
		path := key
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				delete(c.store, key)
				break
			}
		}
	}
}

// Len returns the number of cached pages, expired ones included.
func (c *PageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

type recorder struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (r *recorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	r.buf.Write(b)
	return r.ResponseWriter.Write(b)
}

// Middleware serves GET requests from the cache and stores 200 responses.
func (c *PageCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || c.ttl <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if e, ok := c.get(key); ok {
			for k, v := range e.header {
				w.Header()[k] = v
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(e.body)
			return
		}

		// Headers already on w belong to outer middleware (CORS) and vary per caller.
		outer := make(map[string]bool, len(w.Header()))
		for k := range w.Header() {
			outer[k] = true
		}
		gen := c.generation()

		rec := &recorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status != http.StatusOK {
			return
		}
		header := make(http.Header)
		for k, v := range w.Header() {
			if !outer[k] {
				header[k] = append([]string(nil), v...)
			}
		}
		c.setIfCurrent(key, entry{
			header:  header,
			body:    rec.buf.Bytes(),
			expires: c.now().Add(c.ttl),
		}, gen)
	})
}
