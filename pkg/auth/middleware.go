package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"brain2-conceptmap/pkg/api"
)

// Middleware rejects requests without a valid bearer token. A nil validator
// disables authentication.
func Middleware(v *JWTValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") {
				unauthorized(w, r, ErrMissingToken)
				return
			}

			claims, err := v.ValidateToken(token)
			if err != nil {
				logger.Debug("Rejected bearer token", zap.Error(err))
				if errors.Is(err, ErrExpiredToken) {
					unauthorized(w, r, ErrExpiredToken)
				} else {
					unauthorized(w, r, ErrInvalidToken)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, reason error) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="conceptmap"`)
	api.Error(w, r, http.StatusUnauthorized, api.ErrorDetail{Type: "UNAUTHORIZED", Message: reason.Error()})
}
