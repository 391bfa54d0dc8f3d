package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teachspace-api/pkg/config"
	"github.com/noah-isme/teachspace-api/pkg/session"
)

func sessionRouter(tokens *session.Tokens) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Session(tokens, config.SessionConfig{CookieName: "sid", TTL: time.Hour}, nil))
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, SessionID(c))
	})
	return r
}

func TestSessionStartsNewSession(t *testing.T) {
	tokens := session.NewTokens("secret", time.Hour)
	r := sessionRouter(tokens)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	token := w.Header().Get(SessionHeader)
	require.NotEmpty(t, token)
	sid, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, sid, w.Body.String())
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sid=")
}

func TestSessionReusesValidToken(t *testing.T) {
	tokens := session.NewTokens("secret", time.Hour)
	token, _, err := tokens.Issue("existing")
	require.NoError(t, err)
	r := sessionRouter(tokens)

	byHeader := httptest.NewRequest(http.MethodGet, "/", nil)
	byHeader.Header.Set(SessionHeader, token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, byHeader)
	assert.Equal(t, "existing", w.Body.String())
	assert.Empty(t, w.Header().Get(SessionHeader))

	byCookie := httptest.NewRequest(http.MethodGet, "/", nil)
	byCookie.AddCookie(&http.Cookie{Name: "sid", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, byCookie)
	assert.Equal(t, "existing", w.Body.String())
}

func TestSessionReplacesForgedToken(t *testing.T) {
	forged, _, err := session.NewTokens("other", time.Hour).Issue("victim")
	require.NoError(t, err)
	r := sessionRouter(session.NewTokens("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, forged)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEqual(t, "victim", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(SessionHeader))
}

func TestSessionIssueFailure(t *testing.T) {
	r := sessionRouter(session.NewTokens("", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
