package api

import (
	"context"
	"net/http"

	"GestAsd/api/auth"
	"GestAsd/api/constants"
	"GestAsd/internal/validation"
)

type contextKey string

const (
	UserIDKey  contextKey = "user_id"
	SessionKey contextKey = "session"
)

func GetUserIDFromCtx(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}

func GetSessionFromCtx(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value(SessionKey).(*auth.UserSession); ok {
		return session
	}
	return nil
}

// SessionMiddleware resolves the caller from user_id (body, form or query)
// and rejects requests without an active session. The resolved session is
// placed on the request context for handlers.
func SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := validation.ExtractUserID(r)
		if err != nil || userID == "" {
			RespondWithError(w, http.StatusBadRequest, constants.ErrMissingUserID)
			return
		}
		session := validation.ValidateSession(userID)
		if session == nil {
			RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		ctx = context.WithValue(ctx, SessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware allows only sessions carrying the admin role. Must run
// after SessionMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := GetSessionFromCtx(r.Context())
		if session == nil {
			RespondWithError(w, http.StatusUnauthorized, constants.ErrPleaseLogin)
			return
		}
		if !session.IsAdmin {
			RespondWithError(w, http.StatusForbidden, constants.ErrAdminOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}
