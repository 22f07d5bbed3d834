package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/xdg/sslexec/internal/clog"
	"github.com/xdg/sslexec/internal/token"
)

// TokenHeader is the alternative to "Authorization: Bearer" for passing
// the API token.
const TokenHeader = "X-Sslexec-Token" //nolint:gosec // G101: not a credential

// requestLogger logs each request to clog once it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		clog.Info("api: %s %s %d %dB %s remote=%s id=%s",
			r.Method, r.URL.Path, status, ww.BytesWritten(),
			time.Since(start).Round(time.Microsecond), r.RemoteAddr, middleware.GetReqID(r.Context()))
	})
}

// bodyLimit caps request bodies at n bytes. Zero disables the cap.
func bodyLimit(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if n <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

// requireToken rejects requests that do not carry want, either as a
// bearer token or in TokenHeader.
func requireToken(want string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(TokenHeader)
			if got == "" {
				if auth, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
					got = strings.TrimSpace(auth)
				}
			}
			if got == "" {
				respond(w, responseCodec(r, nil), http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
				return
			}
			if !token.Equal(got, want) {
				clog.Warn("api: invalid token from %s", r.RemoteAddr)
				respond(w, responseCodec(r, nil), http.StatusUnauthorized, ErrorResponse{Error: "invalid token"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
