package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/votacontrol/attendance-api/internal/constants"
)

func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.POST("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(constants.ContextKeyUserID, uint64(7))
		require.NoError(t, session.Save())
		c.Status(http.StatusOK)
	})

	protected := r.Group("/", RequireAuth())
	protected.GET("/me", func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})

	return r
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	r := setupAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_AllowsSessionUser(t *testing.T) {
	r := setupAuthRouter(t)

	loginW := httptest.NewRecorder()
	r.ServeHTTP(loginW, httptest.NewRequest(http.MethodPost, "/login", nil))
	require.Equal(t, http.StatusOK, loginW.Code)
	require.NotEmpty(t, loginW.Result().Cookies())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range loginW.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAsUserID(t *testing.T) {
	id, ok := asUserID(uint64(3))
	require.True(t, ok)
	require.Equal(t, uint64(3), id)

	id, ok = asUserID(int(5))
	require.True(t, ok)
	require.Equal(t, uint64(5), id)

	_, ok = asUserID(int(-1))
	require.False(t, ok)

	_, ok = asUserID("7")
	require.False(t, ok)

	_, ok = asUserID(nil)
	require.False(t, ok)
}
