package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/codecollab/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identityRouter(m *auth.JWTManager, required bool) *gin.Engine {
	r := gin.New()
	r.GET("/whoami", Identity(m, required), func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestIdentity(t *testing.T) {
	m := auth.NewJWTManager("secret", time.Hour)
	id, err := m.Issue()
	require.NoError(t, err)
	token := id.Token

	tests := []struct {
		name     string
		required bool
		url      string
		header   string
		status   int
		body     string
	}{
		{"anonymous allowed", false, "/whoami", "", http.StatusOK, ""},
		{"anonymous refused", true, "/whoami", "", http.StatusUnauthorized, ""},
		{"query token", true, "/whoami?token=" + token, "", http.StatusOK, id.UserID},
		{"bearer token", false, "/whoami", "Bearer " + token, http.StatusOK, id.UserID},
		{"invalid token", false, "/whoami?token=garbage", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			identityRouter(m, tt.required).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestIdentityWithoutManager(t *testing.T) {
	w := httptest.NewRecorder()
	identityRouter(nil, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami?token=x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(NewOriginChecker([]string{"http://localhost:5173"})))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestOriginChecker(t *testing.T) {
	oc := NewOriginChecker([]string{"http://localhost:3000"})

	assert.True(t, oc.Allowed(""))
	assert.True(t, oc.Allowed("http://localhost:3000"))
	assert.False(t, oc.Allowed("http://localhost:3001"))

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	assert.False(t, oc.CheckOrigin(req))
}
