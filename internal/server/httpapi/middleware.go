package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/server/auth"
)

type contextKey string

const userIDKey contextKey = "userID"

// authenticator validates the bearer access token and stores the user ID in
// the request context.
func authenticator(secret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, common.BearerPrefix) {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			token := strings.TrimPrefix(header, common.BearerPrefix)

			userID, err := auth.GetUserIDFromToken(token, secret)
			if err != nil {
				writeServiceError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userIDFromContext returns the authenticated user's ID. The authenticator
// guarantees it is set on every route behind it.
func userIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
