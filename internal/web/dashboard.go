package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/session"
	"inspection-portal/internal/treestate"
	"inspection-portal/internal/upstream"
)

// AdminDashboard renders the admin view of the full hierarchy.
func (h *Handler) AdminDashboard(c *gin.Context) {
	h.dashboard(c, session.RoleAdmin)
}

// PartnerDashboard renders the partner's own slice of the hierarchy,
// with the unread-report chips on top.
func (h *Handler) PartnerDashboard(c *gin.Context) {
	h.dashboard(c, session.RolePartner)
}

func (h *Handler) dashboard(c *gin.Context, role session.Role) {
	sess, ok := h.session(c)
	if !ok {
		return
	}

	snap := h.snapshot(sess.Token)

	// Selecting the already-selected node is the refresh gesture: it
	// forces exactly one silent refetch before re-rendering.
	needFetch := snap.Forest() == nil
	selKind := hierarchy.Kind(c.Query("kind"))
	selID := c.Query("id")
	if selID != "" {
		if snap.Select(selKind, selID) {
			needFetch = true
		}
	}

	if needFetch {
		if _, err := h.fetchForest(c, sess); err != nil {
			if upstream.IsAuthError(err) {
				h.sessions.Clear(c)
				c.Redirect(http.StatusFound, session.LoginPathFor(c.Request.URL.Path))
				return
			}
			// Error state: no tree is rendered.
			c.HTML(http.StatusOK, "dashboard.tmpl", gin.H{
				"Role":  string(role),
				"Error": errorMessage(err),
			})
			return
		}
	}

	forest := snap.Forest()

	flags, err := h.state.Flags(c.Request.Context(), h.sessions.DeviceID(c))
	if err != nil {
		// Expansion state is advisory; render collapsed rather than fail.
		log.Printf("failed to load tree state: %v", err)
	}
	rows := hierarchy.Flatten(forest, treestate.ExpandedFunc(flags))

	data := gin.H{
		"Role":          string(role),
		"Rows":          rows,
		"SelectedKind":  string(selKind),
		"SelectedID":    selID,
		"Error":         c.Query("error"),
		"DashboardPath": role.DashboardPath(),
	}

	if role == session.RolePartner {
		data["NewReports"] = hierarchy.NewReports(forest)
	}

	if selID != "" {
		detail, err := h.fetchDetail(c, sess, selKind, selID)
		if err != nil {
			if upstream.IsAuthError(err) {
				h.sessions.Clear(c)
				c.Redirect(http.StatusFound, session.LoginPathFor(c.Request.URL.Path))
				return
			}
			data["DetailError"] = errorMessage(err)
		} else {
			data["Detail"] = detail
		}
	}

	c.HTML(http.StatusOK, "dashboard.tmpl", data)
}

// fetchDetail loads the info-panel record for the selected node.
func (h *Handler) fetchDetail(c *gin.Context, sess session.Session, kind hierarchy.Kind, id string) (any, error) {
	ctx := c.Request.Context()
	switch kind {
	case hierarchy.KindPartner:
		return h.upstream.GetPartner(ctx, sess.Token, id)
	case hierarchy.KindCustomer:
		return h.upstream.GetCustomer(ctx, sess.Token, id)
	case hierarchy.KindUnit:
		return h.upstream.GetUnit(ctx, sess.Token, id)
	case hierarchy.KindReport:
		return h.upstream.GetReport(ctx, sess.Token, id)
	default:
		return nil, &upstream.APIError{Status: http.StatusBadRequest, Message: "unknown selection type"}
	}
}

func errorMessage(err error) string {
	if apiErr, ok := upstream.AsAPIError(err); ok {
		return apiErr.Message
	}
	return "Network error occurred"
}

// deleteAndReconcile is the shared two-phase delete flow: the upstream
// delete, then the speculative prune of the local snapshot (clearing
// the selection if it pointed at the node), then the unconditional
// authoritative refetch. The prune is a latency optimization only; the
// refetch decides what the tree really looks like.
func (h *Handler) deleteAndReconcile(c *gin.Context, kind hierarchy.Kind, del func(token string) error) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	backTo := sess.Role.DashboardPath()
	id := c.Param("id")

	if err := del(sess.Token); err != nil {
		h.failPage(c, backTo, err)
		return
	}

	h.snapshot(sess.Token).Prune(kind, id)

	if _, err := h.fetchForest(c, sess); err != nil {
		h.failPage(c, backTo, err)
		return
	}
	c.Redirect(http.StatusFound, backTo)
}

// mutateAndRefetch wraps a create/update call with the shared
// success path: close the form by redirecting to the dashboard after
// the same refetch the delete flow uses.
func (h *Handler) mutateAndRefetch(c *gin.Context, mutate func(token string) error) {
	sess, ok := h.session(c)
	if !ok {
		return
	}
	backTo := sess.Role.DashboardPath()

	if err := mutate(sess.Token); err != nil {
		h.failPage(c, backTo, err)
		return
	}
	if _, err := h.fetchForest(c, sess); err != nil {
		h.failPage(c, backTo, err)
		return
	}
	c.Redirect(http.StatusFound, backTo)
}
