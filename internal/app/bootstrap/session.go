package bootstrap

import (
	"errors"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// newSessionStore builds the cookie store that carries the sign-up flash
// across the redirect to /thanks.
//
// In production (secure=true) cookies are Secure. Over http://localhost use
// secure=false so the browser accepts them.
func newSessionStore(sessionKey string, secure bool, logger *zap.Logger) (*sessions.CookieStore, error) {
	if sessionKey == "" {
		return nil, errors.New("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < minSessionKeyLen {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   600,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized", zap.Bool("secure", secure))
	return store, nil
}
