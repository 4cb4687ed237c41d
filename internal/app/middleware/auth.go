package middleware

import (
	"net/http"
	"strings"
	"walletledger/internal/app/apperr"
	"walletledger/internal/app/handler"
	"walletledger/internal/app/logger"
	"walletledger/internal/app/session"
)

// Auth resolves the bearer token into the request actor.
func Auth(jwt session.Reader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.Get(r.Context(), "Middleware.Auth")

			reqHeader := r.Header.Get("Authorization")
			splitToken := strings.Split(reqHeader, "Bearer ")
			if len(splitToken) != 2 {
				log.Debug().Str("header", reqHeader).Msg("Invalid Authorization header")
				handler.WriteError(w, apperr.ErrUnauthorized)
				return
			}

			a, err := jwt.Read(r.Context(), splitToken[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				handler.WriteError(w, apperr.ErrUnauthorized)
				return
			}

			log.Debug().Str("user_id", a.UserID.String()).Bool("admin", a.IsAdmin).Msg("Actor authorized")
			r = r.WithContext(session.WithActor(r.Context(), *a))
			next.ServeHTTP(w, r)
		})
	}
}
