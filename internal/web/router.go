package web

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"inspection-portal/config"
	"inspection-portal/internal/mw"
	"inspection-portal/internal/notification"
	"inspection-portal/internal/session"
	"inspection-portal/internal/treestate"
	"inspection-portal/internal/upstream"
)

// NewRouter creates and configures the portal's Gin router.
func NewRouter(
	cfg *config.Config,
	client *upstream.Client,
	sessions *session.Manager,
	state treestate.Store,
	db *gorm.DB,
	pool *notification.WorkerPool,
	webpushOptions *webpush.Options,
) *gin.Engine {
	r := gin.Default()
	r.LoadHTMLGlob(cfg.Server.TemplateGlob)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	handler := NewHandler(client, sessions, state, db, pool, webpushOptions, cacheTTL)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	responseCache := mw.Cache(cache.New(cacheTTL, 2*cacheTTL), cacheTTL)

	r.Use(mw.Gate(sessions))

	r.Static("/static", "./static")

	// Login screens
	r.GET("/", handler.PartnerLoginPage)
	r.GET("/partner", handler.PartnerLoginPage)
	r.GET("/admin", handler.AdminLoginPage)
	r.POST("/partner", handler.PartnerLogin)
	r.POST("/admin", handler.AdminLogin)

	admin := r.Group("/admin")
	{
		admin.GET("/dashboard", handler.AdminDashboard)
		admin.POST("/logout", handler.Logout)
		admin.POST("/password", handler.ChangePassword)

		admin.POST("/partners", handler.CreatePartner)
		admin.POST("/partners/:id", handler.UpdatePartner)
		admin.POST("/partners/:id/delete", handler.DeletePartner)
		admin.POST("/partners/:id/password", handler.SetPartnerPassword)

		admin.POST("/customers", handler.CreateCustomer)
		admin.POST("/customers/:id", handler.UpdateCustomer)
		admin.POST("/customers/:id/delete", handler.DeleteCustomer)

		admin.POST("/units", handler.CreateUnit)
		admin.POST("/units/:id", handler.UpdateUnit)
		admin.POST("/units/:id/delete", handler.DeleteUnit)

		admin.POST("/reports", handler.CreateReport)
		admin.POST("/reports/:id", handler.UpdateReport)
		admin.POST("/reports/:id/delete", handler.DeleteReport)
		admin.POST("/reports/:id/send", handler.SendReport)
		admin.POST("/reports/:id/send-to-partner", handler.SendReportToPartner)
		admin.POST("/reports/:id/files", handler.UploadReportFiles)
		admin.POST("/reports/:id/files/:fileId/delete", handler.DeleteReportFile)
		admin.GET("/reports/:id/download", handler.DownloadReport)
		admin.GET("/reports/:id/download/:fileId", handler.DownloadReport)
	}

	partner := r.Group("/partner")
	{
		partner.GET("/dashboard", handler.PartnerDashboard)
		partner.POST("/logout", handler.Logout)
		partner.POST("/password", handler.ChangePassword)

		partner.POST("/reports/:id/mark-read", handler.MarkReportRead)
		partner.POST("/reports/:id/note", handler.SetPartnerNote)
		partner.GET("/reports/:id/download", handler.DownloadReport)
		partner.GET("/reports/:id/download/:fileId", handler.DownloadReport)
	}

	// JSON API for the dashboard pages; the gate bypasses /api, so
	// each handler authenticates itself where needed.
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/tree/toggle", handler.ToggleTreeNode)

		api.GET("/customers/partner/:id", handler.ListCustomersByPartner)
		api.GET("/units/customer/:id", handler.ListUnitsByCustomer)
		api.GET("/units/partner/:id", handler.ListUnitsByPartner)

		api.GET("/vapid_public_key", responseCache, handler.GetVAPIDPublicKey)
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
	}

	return r
}
