package session

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"inspection-portal/config"
)

// Cookie names shared with the routing gate.
const (
	CookieToken  = "token"
	CookieRole   = "userRole"
	CookieDevice = "sid"
)

// Role is the portal-side role recorded next to the upstream token.
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePartner Role = "partner"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePartner
}

// DashboardPath returns the role's dashboard route. Unknown roles fall
// back to the partner dashboard, mirroring the partner-default used
// throughout the portal.
func (r Role) DashboardPath() string {
	if r == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/partner/dashboard"
}

// LoginPath returns the role's login route.
func (r Role) LoginPath() string {
	if r == RoleAdmin {
		return "/admin"
	}
	return "/partner"
}

// LoginPathFor maps a request path to the login route of its section:
// /partner/... to the partner login, /admin/... to the admin login,
// anything else to the partner login as the default.
func LoginPathFor(path string) string {
	if strings.HasPrefix(path, "/admin") {
		return RoleAdmin.LoginPath()
	}
	return RolePartner.LoginPath()
}

// Session is an authenticated browser session: the upstream-issued
// bearer token and the role it was issued for.
type Session struct {
	Token string
	Role  Role
}

// Manager reads and writes the session cookies. It is injected into
// handlers instead of read from ambient state so tests can drive it
// through plain gin contexts.
type Manager struct {
	ttl    time.Duration
	secure bool
}

// NewManager creates a manager from the auth configuration.
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		ttl:    time.Duration(cfg.CookieTTLDays) * 24 * time.Hour,
		secure: cfg.Secure,
	}
}

// Issue sets the token and role cookies on the response, SameSite Lax
// with the configured expiry.
func (m *Manager) Issue(c *gin.Context, token string, role Role) {
	maxAge := int(m.ttl.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieToken, token, maxAge, "/", "", m.secure, true)
	c.SetCookie(CookieRole, string(role), maxAge, "/", "", m.secure, false)
}

// Clear expires both auth cookies. Logout is purely local; no upstream
// call is made.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieToken, "", -1, "/", "", m.secure, true)
	c.SetCookie(CookieRole, "", -1, "/", "", m.secure, false)
}

// Get reads the current session from the request cookies. A session
// without a token is reported as absent; a token with an unknown role
// is still returned so the gate can route it to a login page.
func (m *Manager) Get(c *gin.Context) (Session, bool) {
	token, err := c.Cookie(CookieToken)
	if err != nil || token == "" {
		return Session{}, false
	}
	role, _ := c.Cookie(CookieRole)
	return Session{Token: token, Role: Role(role)}, true
}

// DeviceID returns the stable per-browser id used to key tree
// expansion state, creating the cookie on first sight. The device
// cookie deliberately outlives login sessions so expansion state
// survives a re-login.
func (m *Manager) DeviceID(c *gin.Context) string {
	if id, err := c.Cookie(CookieDevice); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	// One year; expansion flags are advisory UI state only.
	c.SetCookie(CookieDevice, id, 365*24*3600, "/", "", m.secure, true)
	return id
}
