package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/session"
	"inspection-portal/internal/upstream"
)

func partnerForm(c *gin.Context) upstream.PartnerInput {
	return upstream.PartnerInput{
		Name:    c.PostForm("name"),
		Email:   c.PostForm("email"),
		Phone:   c.PostForm("phone"),
		Address: c.PostForm("address"),
	}
}

func (h *Handler) CreatePartner(c *gin.Context) {
	in := partnerForm(c)
	if in.Name == "" || in.Email == "" {
		h.failPage(c, dashboardFor(c), requiredFields("Name and email are required"))
		return
	}
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.CreatePartner(c.Request.Context(), token, in)
		return err
	})
}

func (h *Handler) UpdatePartner(c *gin.Context) {
	id := c.Param("id")
	in := partnerForm(c)
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.UpdatePartner(c.Request.Context(), token, id, in)
		return err
	})
}

func (h *Handler) DeletePartner(c *gin.Context) {
	h.deleteAndReconcile(c, hierarchy.KindPartner, func(token string) error {
		return h.upstream.DeletePartner(c.Request.Context(), token, c.Param("id"))
	})
}

// SetPartnerPassword resets a partner's login password; this does not
// touch the hierarchy, so no refetch follows.
func (h *Handler) SetPartnerPassword(c *gin.Context) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	backTo := sess.Role.DashboardPath()

	password := c.PostForm("password")
	if password == "" {
		h.failPage(c, backTo, requiredFields("Password is required"))
		return
	}
	if err := h.upstream.SetPartnerPassword(c.Request.Context(), sess.Token, c.Param("id"), password); err != nil {
		h.failPage(c, backTo, err)
		return
	}
	c.Redirect(http.StatusFound, backTo)
}

func customerForm(c *gin.Context) upstream.CustomerInput {
	return upstream.CustomerInput{
		Name:      c.PostForm("name"),
		Email:     c.PostForm("email"),
		Phone:     c.PostForm("phone"),
		PartnerID: c.PostForm("partnerId"),
	}
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	in := customerForm(c)
	if in.Name == "" || in.PartnerID == "" {
		h.failPage(c, dashboardFor(c), requiredFields("Name and partner are required"))
		return
	}
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.CreateCustomer(c.Request.Context(), token, in)
		return err
	})
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id := c.Param("id")
	in := customerForm(c)
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.UpdateCustomer(c.Request.Context(), token, id, in)
		return err
	})
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	h.deleteAndReconcile(c, hierarchy.KindCustomer, func(token string) error {
		return h.upstream.DeleteCustomer(c.Request.Context(), token, c.Param("id"))
	})
}

// CreateUnit validates the customer-XOR-partner parent rule on the raw
// form input before any network call is made.
func (h *Handler) CreateUnit(c *gin.Context) {
	unitName := c.PostForm("unitName")
	if unitName == "" {
		h.failPage(c, dashboardFor(c), requiredFields("Unit name is required"))
		return
	}

	parent, err := hierarchy.UnitParent(c.PostForm("customerId"), c.PostForm("partnerId"))
	if err != nil {
		h.failPage(c, dashboardFor(c), requiredFields("A unit needs exactly one parent: a customer or a partner"))
		return
	}

	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.CreateUnit(c.Request.Context(), token, unitName, parent)
		return err
	})
}

func (h *Handler) UpdateUnit(c *gin.Context) {
	id := c.Param("id")
	unitName := c.PostForm("unitName")
	if unitName == "" {
		h.failPage(c, dashboardFor(c), requiredFields("Unit name is required"))
		return
	}
	h.mutateAndRefetch(c, func(token string) error {
		_, err := h.upstream.UpdateUnit(c.Request.Context(), token, id, unitName)
		return err
	})
}

func (h *Handler) DeleteUnit(c *gin.Context) {
	h.deleteAndReconcile(c, hierarchy.KindUnit, func(token string) error {
		return h.upstream.DeleteUnit(c.Request.Context(), token, c.Param("id"))
	})
}

// requiredFields makes a local validation failure travel the same error
// path as an upstream 400.
func requiredFields(msg string) error {
	return &upstream.APIError{Status: http.StatusBadRequest, Message: msg}
}

// dashboardFor maps a page route to its section's dashboard, for
// validation failures caught before the session is even looked at.
func dashboardFor(c *gin.Context) string {
	return session.LoginPathFor(c.Request.URL.Path) + "/dashboard"
}
