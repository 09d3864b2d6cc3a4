package middleware

import (
	"net/http"

	"go-news-app/internal/logger"
	"go-news-app/internal/session"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It checks the user's permissions using Casbin based on session data and
// puts the user into the request context.
func Authorizer(e casbin.IEnforcer, sm session.Manager, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := sm.GetString(r.Context(), session.SubjectKey)
			if subject == "" {
				subject = Anonymous
			}
			roles, _ := e.GetRolesForUser(subject)
			userInfo := &UserInfo{
				Subject: subject,
				Name:    sm.GetString(r.Context(), session.NameKey),
				Roles:   roles,
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				writeJSONError(w, http.StatusInternalServerError, "Authorization error")
				return
			}
			if !allowed {
				if userInfo.IsAnonymous() {
					writeJSONError(w, http.StatusUnauthorized, "Sign in required")
					return
				}
				writeJSONError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
