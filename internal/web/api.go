package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/model"
)

// toggleRequest is the JSON body of a tree expand/collapse toggle.
type toggleRequest struct {
	Kind     string `json:"kind" binding:"required"`
	ID       string `json:"id" binding:"required"`
	Expanded bool   `json:"expanded"`
}

// ToggleTreeNode persists a single node's expansion flag for this
// device. Toggling never changes the selection.
func (h *Handler) ToggleTreeNode(c *gin.Context) {
	if _, ok := h.jsonSession(c); !ok {
		return
	}

	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind and id are required"})
		return
	}

	kind := hierarchy.Kind(req.Kind)
	switch kind {
	case hierarchy.KindPartner, hierarchy.KindCustomer, hierarchy.KindUnit:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "node is not expandable"})
		return
	}

	deviceID := h.sessions.DeviceID(c)
	if err := h.state.Set(c.Request.Context(), deviceID, kind, req.ID, req.Expanded); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save tree state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": hierarchy.ExpandKey(kind, req.ID), "expanded": req.Expanded})
}

// ListCustomersByPartner feeds the cascading selects on the report and
// unit forms.
func (h *Handler) ListCustomersByPartner(c *gin.Context) {
	sess, ok := h.jsonSession(c)
	if !ok {
		return
	}
	customers, err := h.upstream.CustomersByPartner(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) ListUnitsByCustomer(c *gin.Context) {
	sess, ok := h.jsonSession(c)
	if !ok {
		return
	}
	units, err := h.upstream.UnitsByCustomer(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

func (h *Handler) ListUnitsByPartner(c *gin.Context) {
	sess, ok := h.jsonSession(c)
	if !ok {
		return
	}
	units, err := h.upstream.UnitsByPartner(c.Request.Context(), sess.Token, c.Param("id"))
	if err != nil {
		h.failJSON(c, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// GetVAPIDPublicKey hands the browser the key it needs to create a
// push subscription. 404 when push is disabled.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "push notifications are disabled"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vapid_public_key": h.webpush.VAPIDPublicKey})
}

// subscriptionRequest is the browser's PushSubscription JSON plus the
// partner scope ("" subscribes to all partners, admin use).
type subscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256DH string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
	PartnerID string `json:"partnerId"`
}

// GetSubscription reports whether the endpoint in the query string is
// registered, so the page can reflect the toggle state.
func (h *Handler) GetSubscription(c *gin.Context) {
	if _, ok := h.jsonSession(c); !ok {
		return
	}
	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	var sub model.PushSubscription
	err := h.db.WithContext(c.Request.Context()).First(&sub, "endpoint = ?", endpoint).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"subscribed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"subscribed": true, "partnerId": sub.PartnerID})
}

// PutSubscription registers (or re-registers) a push subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	if _, ok := h.jsonSession(c); !ok {
		return
	}
	var req subscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription payload"})
		return
	}

	sub := model.PushSubscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.Keys.P256DH,
		Auth:      req.Keys.Auth,
		PartnerID: req.PartnerID,
	}
	if err := h.db.WithContext(c.Request.Context()).Save(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "subscribed"})
}

// DeleteSubscription removes a push subscription by endpoint.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	if _, ok := h.jsonSession(c); !ok {
		return
	}
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}
	if err := h.db.WithContext(c.Request.Context()).Delete(&model.PushSubscription{}, "endpoint = ?", req.Endpoint).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "unsubscribed"})
}
