package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubGate struct {
	expired bool
}

func (g stubGate) Expired() bool {
	return g.expired
}

func TestGateMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(expired bool, method, path string) int {
		gm := NewGateMiddleware(stubGate{expired: expired})
		w := httptest.NewRecorder()
		gm.Middleware(next).ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w.Result().StatusCode
	}

	t.Run("writes pass while running", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(false, "POST", "/api/posts"))
		assert.Equal(t, http.StatusOK, serve(false, "PUT", "/api/interaction/p1"))
	})

	t.Run("writes blocked after expiry", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, serve(true, "POST", "/api/posts"))
		assert.Equal(t, http.StatusForbidden, serve(true, "PUT", "/api/interaction/p1"))
		assert.Equal(t, http.StatusForbidden, serve(true, "DELETE", "/api/post/p1"))
		assert.Equal(t, http.StatusForbidden, serve(true, "POST", "/api/generate"))
	})

	t.Run("reads always pass", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(true, "GET", "/api/feed"))
		assert.Equal(t, http.StatusOK, serve(true, "GET", "/api/timer"))
	})

	t.Run("poll and session stay writable", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(true, "POST", "/api/poll"))
		assert.Equal(t, http.StatusOK, serve(true, "POST", "/api/session"))
	})
}
