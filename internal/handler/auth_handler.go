package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"net/http"

	"go-news-app/internal/auth"
	"go-news-app/internal/logger"
	"go-news-app/internal/session"

	"github.com/casbin/casbin/v2"
	"golang.org/x/oauth2"
)

// Authenticator is the part of the OIDC client used by the login flow.
// *auth.Authenticator satisfies it.
type Authenticator interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	ClaimsFromToken(ctx context.Context, code string) (*auth.Claims, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     Authenticator
	session  session.Manager
	enforcer casbin.IEnforcer
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Authenticator, sm session.Manager, e casbin.IEnforcer, log logger.Logger) *AuthHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AuthHandler{auth: a, session: sm, enforcer: e, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		h.log.Error(err, "Failed to generate OAuth state")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.StateKey, state)
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider. It exchanges
// the code, verifies the ID token and signs the editor in.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	state := h.session.PopString(r.Context(), session.StateKey)
	if state == "" || r.URL.Query().Get("state") != state {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}

	claims, err := h.auth.ClaimsFromToken(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "Failed to verify ID token")
		http.Error(w, "Failed to verify ID token", http.StatusUnauthorized)
		return
	}

	if err := auth.EnsureReader(h.enforcer, claims.Subject); err != nil {
		h.log.Error(err, "Failed to assign default role")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Rotate the session token on privilege change.
	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.SubjectKey, claims.Subject)
	h.session.Put(r.Context(), session.NameKey, claims.DisplayName())

	h.log.With(map[string]interface{}{"subject": claims.Subject}).Info("user signed in")
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout destroys the session and redirects to the home page.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
