package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/db"
	"github.com/bandhannova07/blinders-secure-chat/internal/service"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"github.com/gin-gonic/gin"
)

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Port:                     "0",
		JWTSecret:                "secret",
		Env:                      "dev",
		AccessTokenTTLHours:      24,
		PresidentTokenTTLMinutes: 60,
		UploadDir:                t.TempDir(),
	}
	gdb, err := db.Connect("host=localhost user=postgres password=postgres dbname=blinders port=5432 sslmode=disable TimeZone=UTC")
	if err != nil {
		t.Skipf("skip: db not available: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Skipf("skip: migrate failed: %v", err)
	}
	gateway := service.NewChatGateway(gdb, cfg)
	hub := ws.NewHub(gateway, gateway, gateway)
	engine := SetupRouter(cfg, gdb, hub)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Port:                     "0",
		JWTSecret:                "secret",
		Env:                      "dev",
		AccessTokenTTLHours:      24,
		PresidentTokenTTLMinutes: 60,
		UploadDir:                t.TempDir(),
	}
	gdb, err := db.Connect("host=localhost user=postgres password=postgres dbname=blinders port=5432 sslmode=disable TimeZone=UTC")
	if err != nil {
		t.Skipf("skip: db not available: %v", err)
	}
	gateway := service.NewChatGateway(gdb, cfg)
	hub := ws.NewHub(gateway, gateway, gateway)
	engine := SetupRouter(cfg, gdb, hub)

	for _, path := range []string{"/api/users/me", "/api/rooms", "/api/admin/users"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}
