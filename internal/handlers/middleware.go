package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"gitlab.com/codearena.net/internal/core/ports/primary"
)

type MiddlewareProvider struct {
	token  string
	logger primary.Logger
}

// New returns middleware guarding the status API with a static bearer token. An empty
// token leaves the API open.
func New(token string, logger primary.Logger) *MiddlewareProvider {
	return &MiddlewareProvider{
		token:  token,
		logger: logger,
	}
}

func (m *MiddlewareProvider) TokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" || r.URL.Path == "/api/health" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			ResponseError(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(tokenString), []byte(m.token)) != 1 {
			ResponseError(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (m *MiddlewareProvider) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.logger.Debug("Request served", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
