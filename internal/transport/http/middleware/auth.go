package middleware

import (
	"net/http"
	"strings"

	"hrflow/internal/domain/auth"
	"hrflow/internal/platform/logger"
	"hrflow/internal/requestctx"
	"hrflow/internal/transport/http/api"
)

// tokenHeader is the legacy header some clients send instead of Authorization.
const tokenHeader = "jwt-token"

// Auth verifies the caller's token against secret. An empty secret disables
// the check, which is only allowed outside production.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw := bearerToken(r)
			if raw == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing token", GetRequestID(r.Context()))
				return
			}
			actor, err := auth.ParseToken(secret, raw)
			if err != nil {
				logger.FromContext(r.Context()).Debug().Err(err).Msg("token rejected")
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid token", GetRequestID(r.Context()))
				return
			}

			next.ServeHTTP(w, r.WithContext(requestctx.WithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get(tokenHeader))
}
