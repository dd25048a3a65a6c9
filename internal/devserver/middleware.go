package devserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/carbuyer/internal/common"
)

type ctxKey string

const claimsKey ctxKey = "claims"

func claimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests echoes or assigns X-Request-ID and logs every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(common.RequestIDHeaderName)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, reqID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		s.log.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", reqID,
		)
	})
}

// delay applies the latency configured with SetDelay.
func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := s.delayFor(r.URL.Path); d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-r.Context().Done():
				t.Stop()
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth accepts only unrevoked bearer tokens of existing users.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		if header == "" {
			writeError(w, http.StatusUnauthorized, common.ErrMissingAuthorization.Error())
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidAuthHeader.Error())
			return
		}

		claims, err := ParseToken(token, s.secret)
		if err != nil || s.store.Revoked(claims.ID) {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}
		if _, err := s.store.User(claims.UserID); err != nil {
			writeError(w, http.StatusUnauthorized, common.ErrInvalidToken.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}
