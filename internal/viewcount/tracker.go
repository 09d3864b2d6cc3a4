package viewcount

import (
	"context"
	"net/http"
	"time"

	"go-news-app/internal/config"
)

// Counter atomically bumps an article's view count by one.
type Counter interface {
	IncrementViewCount(ctx context.Context, id int64) error
}

// Tracker decides whether a view counts and keeps the visitor's token.
type Tracker struct {
	counter    Counter
	cookieName string
	maxEntries int
	maxAge     time.Duration
}

// NewTracker creates a Tracker backed by counter.
func NewTracker(counter Counter, cfg config.ViewsConfig) *Tracker {
	name := cfg.CookieName
	if name == "" {
		name = "Views"
	}
	maxAgeDays := cfg.MaxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = 365
	}
	return &Tracker{
		counter:    counter,
		cookieName: name,
		maxEntries: cfg.MaxEntries,
		maxAge:     time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

// CookieName is the name of the cookie carrying the token.
func (t *Tracker) CookieName() string {
	return t.cookieName
}

// RecordView counts a view of articleID unless raw already contains it.
// It returns the token to hand back to the visitor and whether the counter
// was incremented. On error the token is returned unchanged.
func (t *Tracker) RecordView(ctx context.Context, raw string, articleID int64) (string, bool, error) {
	token := Parse(raw, t.maxEntries)
	if token.Contains(articleID) {
		return raw, false, nil
	}
	if err := t.counter.IncrementViewCount(ctx, articleID); err != nil {
		return raw, false, err
	}
	token.Add(articleID)
	return token.String(), true, nil
}

// Cookie builds the response cookie for value.
func (t *Tracker) Cookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     t.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(t.maxAge.Seconds()),
		Expires:  time.Now().Add(t.maxAge),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
