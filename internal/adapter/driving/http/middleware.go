package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

type requestInfoKey struct{}

// requestInfo collects what handlers learn about a request so the middleware
// wrapping them can log it. The extension is only known after authentication.
type requestInfo struct {
	mu        sync.Mutex
	extension string
}

func withRequestInfo(r *http.Request) (*http.Request, *requestInfo) {
	info := &requestInfo{}
	return r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)), info
}

// setRequestExtension records the authenticated extension for the request.
// It is a no-op outside the logging middleware.
func setRequestExtension(ctx context.Context, id string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.mu.Lock()
		info.extension = id
		info.mu.Unlock()
	}
}

func requestExtension(ctx context.Context) string {
	info, ok := ctx.Value(requestInfoKey{}).(*requestInfo)
	if !ok {
		return ""
	}
	return info.get()
}

func (i *requestInfo) get() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.extension
}

// loggingMiddleware logs each HTTP request with method, path, authenticated
// extension, status, and duration. Bodies and the Authorization header are
// never logged.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		r, info := withRequestInfo(r)

		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		if sw.status == http.StatusUnauthorized {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"extension", info.get(),
			"remote", r.RemoteAddr,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error
// with the extension being served, and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					"panic", v,
					"method", r.Method,
					"path", r.URL.Path,
					"extension", requestExtension(r.Context()),
				)
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
