package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		mw := CORSMiddleware([]string{"*"})
		r := httptest.NewRequest(http.MethodGet, "/api/eligibility", nil)
		r.Header.Set("Origin", "https://anything.example")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, r)

		assert.Equal(t, "https://anything.example", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("listed origin allowed", func(t *testing.T) {
		mw := CORSMiddleware([]string{"https://app.example"})
		r := httptest.NewRequest(http.MethodGet, "/api/eligibility", nil)
		r.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, r)

		assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		mw := CORSMiddleware([]string{"https://app.example"})
		r := httptest.NewRequest(http.MethodGet, "/api/eligibility", nil)
		r.Header.Set("Origin", "https://evil.example")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, r)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		mw := CORSMiddleware([]string{"*"})
		r := httptest.NewRequest(http.MethodOptions, "/api/share", nil)
		r.Header.Set("Origin", "https://app.example")
		w := httptest.NewRecorder()
		mw(next).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}
