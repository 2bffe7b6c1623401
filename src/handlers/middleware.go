package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/logger"
	"github.com/Shermon69/Portfolio-Tracker-new-sub000/src/utils"
)

type contextKey string

const userIDContextKey = contextKey("userID")

// UserMiddleware scopes each request to a user. Authentication itself is the
// perimeter's job (this service sits behind the app gateway); the gateway
// injects the resolved user id in X-User-ID and this middleware only refuses
// requests that arrive without one.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDStr := r.Header.Get("X-User-ID")
		if userIDStr == "" {
			logger.L.Debug("UserMiddleware: X-User-ID header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "X-User-ID header required", http.StatusUnauthorized)
			return
		}

		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil || userID <= 0 {
			logger.L.Warn("UserMiddleware: invalid user id", "userID", userIDStr, "path", r.URL.Path)
			utils.SendJSONError(w, "Invalid X-User-ID header", http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext retrieves the user id set by UserMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
