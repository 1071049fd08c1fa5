package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/metrics"
	"github.com/bandhannova07/blinders-secure-chat/internal/mw"
	"github.com/bandhannova07/blinders-secure-chat/internal/service"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRouter wires middleware, the REST API and the WebSocket
// endpoint into one engine.
func SetupRouter(cfg config.Config, gdb *gorm.DB, hub *ws.Hub) *gin.Engine {
	users := service.NewUserService(gdb, cfg, hub)
	admin := service.NewAdminService(gdb, hub)
	rooms := service.NewRoomService(gdb, hub)
	messages := service.NewMessageService(gdb)
	media := service.NewMediaService(gdb, cfg)
	h := NewHandler(users, admin, rooms, messages, media)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.CORS(cfg.Env))
	r.Use(metrics.GinMiddleware())
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/signup", h.Signup)
	api.POST("/auth/login", h.Login)

	authed := api.Group("")
	authed.Use(auth.RequireAuth(cfg, gdb))
	{
		authed.GET("/users/me", h.Me)
		authed.PATCH("/users/me/username", h.UpdateUsername)
		authed.PATCH("/users/me/password", h.ChangePassword)
		authed.POST("/users/me/2fa/setup", h.SetupTwoFactor)
		authed.POST("/users/me/2fa/enable", h.EnableTwoFactor)
		authed.POST("/users/me/2fa/disable", h.DisableTwoFactor)
		authed.POST("/users/me/secret-code", h.SetupSecretCode)
		authed.POST("/users/me/secret-code/disable", h.DisableSecretCode)
		authed.GET("/users", h.Directory)

		authed.GET("/notifications", h.Notifications)
		authed.PATCH("/notifications/:id/read", h.MarkNotificationRead)

		authed.GET("/rooms", h.ListRooms)
		authed.GET("/rooms/:id", h.GetRoom)
		authed.GET("/rooms/:id/messages", h.ListMessages)
		authed.DELETE("/messages/:id", h.DeleteMessage)

		authed.POST("/upload", h.Upload)
		authed.DELETE("/media/:id", h.DeleteMedia)
	}

	adm := api.Group("/admin")
	adm.Use(auth.RequireAuth(cfg, gdb), auth.RequireAdmin())
	{
		adm.GET("/users", h.AdminListUsers)
		adm.GET("/stats", h.AdminStats)
		adm.GET("/rooms", h.AdminListRooms)
		adm.POST("/rooms", h.AdminCreateRoom)
		adm.PATCH("/rooms/:id/active", h.AdminSetRoomActive)
		adm.DELETE("/rooms/:id", h.AdminDeleteRoom)
		adm.GET("/media", h.AdminListMedia)
		adm.PATCH("/users/:id/ban", h.AdminSetBanned)
		adm.PATCH("/users/:id/role", h.AdminUpdateRole)
	}

	// Approval queue and account removal stay with the President.
	pres := api.Group("/admin")
	pres.Use(auth.RequireAuth(cfg, gdb), auth.RequirePresident())
	{
		pres.GET("/requests", h.AdminPendingRequests)
		pres.POST("/requests/:id/approve", h.AdminApprove)
		pres.POST("/requests/:id/decline", h.AdminDecline)
		pres.DELETE("/users/:id", h.AdminDeleteUser)
	}

	r.GET("/ws", ws.Serve(hub))

	r.Static("/uploads", cfg.UploadDir)

	distDir := filepath.Join(".", "frontend", "dist")
	if _, err := os.Stat(filepath.Join(distDir, "index.html")); err == nil {
		r.NoRoute(func(c *gin.Context) {
			rel := strings.TrimPrefix(filepath.Clean(c.Request.URL.Path), "/")
			if rel == "" {
				c.File(filepath.Join(distDir, "index.html"))
				return
			}
			if strings.HasPrefix(rel, "api/") || rel == "metrics" || rel == "healthz" ||
				strings.HasPrefix(rel, "ws") || strings.HasPrefix(rel, "uploads/") {
				c.Status(http.StatusNotFound)
				return
			}
			target := filepath.Join(distDir, rel)
			if fi, err := os.Stat(target); err == nil && !fi.IsDir() {
				c.File(target)
				return
			}
			if strings.Contains(rel, ".") {
				c.Status(http.StatusNotFound)
				return
			}
			c.File(filepath.Join(distDir, "index.html"))
		})
	}
	return r
}
