package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zatekoja/medtourclinic/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "wildcard", origins: []string{"*"}, origin: "https://a.example", want: "*"},
		{name: "listed", origins: []string{"https://a.example"}, origin: "https://a.example", want: "https://a.example"},
		{name: "unlisted", origins: []string{"https://a.example"}, origin: "https://b.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			middleware.CORSMiddleware(tt.origins)(okHandler()).ServeHTTP(w, req)

			assert.Equal(t, http.StatusTeapot, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/x", nil)
	w := httptest.NewRecorder()

	middleware.CORSMiddleware([]string{"*"})(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestLoggingAndObservability_PassStatusThrough(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("GET /api/tenants/{tenantID}/x", okHandler())
	handler := middleware.LoggingMiddleware(middleware.ObservabilityMiddleware(nil)(mux))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tenants/7/x", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
}
