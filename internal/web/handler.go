package web

import (
	"net/http"
	"net/url"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"inspection-portal/internal/hierarchy"
	"inspection-portal/internal/notification"
	"inspection-portal/internal/session"
	"inspection-portal/internal/treestate"
	"inspection-portal/internal/upstream"
)

// Handler holds shared dependencies for the portal handlers.
type Handler struct {
	upstream  *upstream.Client
	sessions  *session.Manager
	state     treestate.Store
	db        *gorm.DB
	snapshots *cache.Cache
	pool      *notification.WorkerPool
	webpush   *webpush.Options
}

// NewHandler creates the portal handler. The snapshot cache holds one
// hierarchy snapshot per session token; entries expire so a dashboard
// left idle starts from a fresh fetch.
func NewHandler(
	client *upstream.Client,
	sessions *session.Manager,
	state treestate.Store,
	db *gorm.DB,
	pool *notification.WorkerPool,
	webpushOptions *webpush.Options,
	snapshotTTL time.Duration,
) *Handler {
	return &Handler{
		upstream:  client,
		sessions:  sessions,
		state:     state,
		db:        db,
		snapshots: cache.New(snapshotTTL, 2*snapshotTTL),
		pool:      pool,
		webpush:   webpushOptions,
	}
}

// snapshot returns the session's hierarchy snapshot, creating an empty
// one on first sight of the token.
func (h *Handler) snapshot(token string) *hierarchy.Snapshot {
	if snap, found := h.snapshots.Get(token); found {
		return snap.(*hierarchy.Snapshot)
	}
	snap := hierarchy.NewSnapshot()
	h.snapshots.SetDefault(token, snap)
	return snap
}

// fetchForest issues the role-appropriate nested-hierarchy fetch and
// installs the result as the session's authoritative snapshot. Every
// unread report observed in the fresh copy is handed to the
// notification pool.
func (h *Handler) fetchForest(c *gin.Context, sess session.Session) (hierarchy.Forest, error) {
	var forest hierarchy.Forest
	var err error
	if sess.Role == session.RoleAdmin {
		forest, err = h.upstream.NestedPartners(c.Request.Context(), sess.Token)
	} else {
		forest, err = h.upstream.NestedPartnersMe(c.Request.Context(), sess.Token)
	}
	if err != nil {
		return nil, err
	}

	h.snapshot(sess.Token).Replace(forest)

	if h.pool != nil {
		h.dispatchNewReports(forest)
	}
	return forest, nil
}

// dispatchNewReports queues a push notification for each unread
// report, scoped to its root partner. The pool deduplicates.
func (h *Handler) dispatchNewReports(forest hierarchy.Forest) {
	for i := range forest {
		scoped := hierarchy.Forest{forest[i]}
		for _, nr := range hierarchy.NewReports(scoped) {
			h.pool.Dispatch(notification.Job{
				ReportID:     nr.ID,
				ReportNumber: nr.ReportNumber,
				PartnerID:    forest[i].ID,
			})
		}
	}
}

// session pulls the request's session. The routing gate keeps
// anonymous traffic off the page routes, so a missing session here
// means a cookie expired mid-flight; bounce to the section's login.
func (h *Handler) session(c *gin.Context) (session.Session, bool) {
	sess, ok := h.sessions.Get(c)
	if !ok {
		c.Redirect(http.StatusFound, session.LoginPathFor(c.Request.URL.Path))
		c.Abort()
	}
	return sess, ok
}

// failPage routes a page-flow error: auth failures silently clear the
// session and land on the section's login; anything else bounces back
// to the given path with the message in the query string.
func (h *Handler) failPage(c *gin.Context, backTo string, err error) {
	if upstream.IsAuthError(err) {
		h.sessions.Clear(c)
		c.Redirect(http.StatusFound, session.LoginPathFor(c.Request.URL.Path))
		c.Abort()
		return
	}

	msg := "Network error occurred"
	if apiErr, ok := upstream.AsAPIError(err); ok {
		msg = apiErr.Message
	}
	c.Redirect(http.StatusFound, backTo+"?error="+url.QueryEscape(msg))
	c.Abort()
}

// failJSON routes a JSON-flow error with the same taxonomy.
func (h *Handler) failJSON(c *gin.Context, err error) {
	if upstream.IsAuthError(err) {
		h.sessions.Clear(c)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
		return
	}
	if apiErr, ok := upstream.AsAPIError(err); ok {
		c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message, "errors": apiErr.Errors})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Network error occurred"})
}

// jsonSession authenticates a JSON request; the gate does not cover
// the /api group.
func (h *Handler) jsonSession(c *gin.Context) (session.Session, bool) {
	sess, ok := h.sessions.Get(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	}
	return sess, ok
}
