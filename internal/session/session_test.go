package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-portal/config"
)

func newManager() *Manager {
	return NewManager(&config.AuthConfig{CookieTTLDays: 7})
}

func recordCookies(t *testing.T, write func(c *gin.Context)) []*http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return w.Result().Cookies()
}

func TestIssue_SetsBothCookies(t *testing.T) {
	cookies := recordCookies(t, func(c *gin.Context) {
		newManager().Issue(c, "tok-1", RolePartner)
	})

	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}

	require.Contains(t, byName, CookieToken)
	require.Contains(t, byName, CookieRole)
	assert.Equal(t, "tok-1", byName[CookieToken].Value)
	assert.Equal(t, "partner", byName[CookieRole].Value)
	assert.Equal(t, 7*24*3600, byName[CookieToken].MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, byName[CookieToken].SameSite)
}

func TestClear_ExpiresBothCookies(t *testing.T) {
	cookies := recordCookies(t, func(c *gin.Context) {
		newManager().Clear(c)
	})

	require.Len(t, cookies, 2)
	for _, ck := range cookies {
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}
}

func TestGet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("no token means no session", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := newManager().Get(c)
		assert.False(t, ok)
	})

	t.Run("token and role round-trip", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.AddCookie(&http.Cookie{Name: CookieToken, Value: "tok-1"})
		c.Request.AddCookie(&http.Cookie{Name: CookieRole, Value: "admin"})

		sess, ok := newManager().Get(c)
		require.True(t, ok)
		assert.Equal(t, "tok-1", sess.Token)
		assert.Equal(t, RoleAdmin, sess.Role)
	})
}

func TestDeviceID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("mints an id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		id := newManager().DeviceID(c)
		assert.NotEmpty(t, id)
		require.Len(t, w.Result().Cookies(), 1)
		assert.Equal(t, id, w.Result().Cookies()[0].Value)
	})

	t.Run("reuses an existing id", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.AddCookie(&http.Cookie{Name: CookieDevice, Value: "dev-1"})

		assert.Equal(t, "dev-1", newManager().DeviceID(c))
		assert.Empty(t, w.Result().Cookies())
	})
}
