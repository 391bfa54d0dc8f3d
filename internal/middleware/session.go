package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/teachspace-api/pkg/config"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/response"
	"github.com/noah-isme/teachspace-api/pkg/session"
)

const (
	// ContextSessionKey is the gin context key storing the session id.
	ContextSessionKey = "sessionID"
	// SessionHeader carries the session token for clients without cookies.
	SessionHeader = "X-Session-Token"
)

// Session attaches a session id to every request. A valid token from the
// cookie or the X-Session-Token header is reused; otherwise a new session is
// started and its token returned in both places.
func Session(tokens *session.Tokens, cfg config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(SessionHeader))
		if raw == "" {
			raw, _ = c.Cookie(cfg.CookieName)
		}

		if raw != "" {
			if sid, err := tokens.Parse(raw); err == nil {
				c.Set(ContextSessionKey, sid)
				c.Next()
				return
			}
		}

		sid := session.NewID()
		token, expiresAt, err := tokens.Issue(sid)
		if err != nil {
			logger.Error("failed to issue session token", zap.Error(err))
			response.Error(c, appErrors.Internal(err, "failed to start session"))
			c.Abort()
			return
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, token, int(cfg.TTL.Seconds()), "/", "", cfg.Secure, true)
		c.Header(SessionHeader, token)
		c.Header("X-Session-Expires", expiresAt.UTC().Format(http.TimeFormat))
		c.Set(ContextSessionKey, sid)
		c.Next()
	}
}

// SessionID returns the session id stored by Session, or "".
func SessionID(c *gin.Context) string {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return ""
	}
	sid, _ := value.(string)
	return sid
}
