package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/cors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageCache_Middleware(t *testing.T) {
	calls := 0
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	})

	c := NewPageCache(time.Minute)
	srv := c.Middleware(h)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses?page=1", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `{"success":true}`, rec.Body.String())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
	assert.Equal(t, 1, calls)

	c.Invalidate("/api/courses")
	assert.Equal(t, 0, c.Len())

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses?page=1", nil))
	assert.Equal(t, 2, calls)
}

func TestPageCache_SkipsErrorsAndExpired(t *testing.T) {
	status := http.StatusInternalServerError
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})

	c := NewPageCache(time.Minute)
	now := time.Now()
	c.now = func() time.Time { return now }
	srv := c.Middleware(h)

	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, 0, c.Len())

	status = http.StatusOK
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, 1, c.Len())

	_, ok := c.get("/api/categories")
	assert.True(t, ok)

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok = c.get("/api/categories")
	assert.False(t, ok)
}

func TestPageCache_InvalidateKeepsOtherPaths(t *testing.T) {
	c := NewPageCache(time.Minute)
	c.set("/api/courses?page=2", entry{expires: time.Now().Add(time.Hour)})
	c.set("/api/instructors", entry{expires: time.Now().Add(time.Hour)})

	c.Invalidate("/api/courses", "/api/categories")
	assert.Equal(t, 1, c.Len())
}

func TestPageCache_DoesNotReplayCORSHeaders(t *testing.T) {
	c := NewPageCache(time.Minute)
	h := cors.New(cors.Options{
		AllowedOrigins:   []string{"https://a.example", "https://b.example"},
		AllowCredentials: true,
	}).Handler(c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	})))

	get := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.Header.Set("Origin", origin)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := get("https://a.example")
	assert.Equal(t, "https://a.example", first.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, first.Header().Get("X-Cache"))

	second := get("https://b.example")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, []string{"https://b.example"}, second.Header().Values("Access-Control-Allow-Origin"))
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, `[]`, second.Body.String())
}

func TestPageCache_InvalidateDuringRender(t *testing.T) {
	c := NewPageCache(time.Minute)
	version := "old"
	read := make(chan struct{})
	release := make(chan struct{})
	blocking := true

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := version
		if blocking {
			close(read)
			<-release
		}
		w.Write([]byte(body))
	}))

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
		done <- rec
	}()

	<-read
	version = "new"
	blocking = false
	c.Invalidate("/api/courses")
	close(release)

	stale := <-done
	assert.Equal(t, "old", stale.Body.String())
	assert.Equal(t, 0, c.Len())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/courses", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
