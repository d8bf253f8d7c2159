package web

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/session"
	"inspection-portal/internal/upstream"
)

// PartnerLoginPage renders the partner login screen. The routing gate
// has already bounced authenticated visitors to their dashboard.
func (h *Handler) PartnerLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{
		"Title":  "Partner Login",
		"Action": session.RolePartner.LoginPath(),
		"Error":  c.Query("error"),
	})
}

// AdminLoginPage renders the admin login screen.
func (h *Handler) AdminLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{
		"Title":  "Admin Login",
		"Action": session.RoleAdmin.LoginPath(),
		"Error":  c.Query("error"),
	})
}

// AdminLogin exchanges the posted credentials for an upstream token
// and issues the session cookies.
func (h *Handler) AdminLogin(c *gin.Context) {
	h.login(c, session.RoleAdmin)
}

// PartnerLogin is the partner counterpart of AdminLogin.
func (h *Handler) PartnerLogin(c *gin.Context) {
	h.login(c, session.RolePartner)
}

func (h *Handler) login(c *gin.Context, role session.Role) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	if email == "" || password == "" {
		h.loginFailed(c, role, "Email and password are required")
		return
	}

	var res *upstream.LoginResult
	var err error
	if role == session.RoleAdmin {
		res, err = h.upstream.AdminLogin(c.Request.Context(), email, password)
	} else {
		res, err = h.upstream.PartnerLogin(c.Request.Context(), email, password)
	}
	if err != nil {
		msg := "Network error occurred"
		if apiErr, ok := upstream.AsAPIError(err); ok {
			msg = apiErr.Message
		}
		h.loginFailed(c, role, msg)
		return
	}

	h.sessions.Issue(c, res.Token, role)
	c.Redirect(http.StatusFound, role.DashboardPath())
}

func (h *Handler) loginFailed(c *gin.Context, role session.Role, msg string) {
	c.Redirect(http.StatusFound, role.LoginPath()+"?error="+url.QueryEscape(msg))
}

// Logout clears both auth cookies by expiry and returns to the
// section's login route. No upstream call is made.
func (h *Handler) Logout(c *gin.Context) {
	h.sessions.Clear(c)
	c.Redirect(http.StatusFound, session.LoginPathFor(c.Request.URL.Path))
}

// ChangePassword validates the form locally, then forwards the change
// to the upstream auth service.
func (h *Handler) ChangePassword(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	backTo := sess.Role.DashboardPath()

	current := c.PostForm("currentPassword")
	next := c.PostForm("newPassword")
	confirm := c.PostForm("confirmPassword")

	switch {
	case current == "" || next == "":
		h.failPage(c, backTo, &upstream.APIError{Status: http.StatusBadRequest, Message: "All password fields are required"})
		return
	case next != confirm:
		h.failPage(c, backTo, &upstream.APIError{Status: http.StatusBadRequest, Message: "New passwords do not match"})
		return
	}

	if err := h.upstream.ChangePassword(c.Request.Context(), sess.Token, current, next); err != nil {
		h.failPage(c, backTo, err)
		return
	}
	c.Redirect(http.StatusFound, backTo)
}
