package service

import (
	"testing"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/db"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

func TestVerifySocketTokenTouchesLastSeen(t *testing.T) {
	cfg := config.Config{JWTSecret: "secret", Env: "dev"}
	gdb, err := db.Connect("host=localhost user=postgres password=postgres dbname=blinders port=5432 sslmode=disable TimeZone=UTC")
	if err != nil {
		t.Skipf("skip: db not available: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Skipf("skip: migrate failed: %v", err)
	}

	stale := time.Now().Add(-48 * time.Hour)
	user := models.User{
		Username:     "gateway-test-" + time.Now().Format("150405.000000000"),
		PasswordHash: "x",
		Role:         role.ShieldCircle,
		Status:       models.StatusApproved,
		IsActive:     true,
		LastSeen:     stale,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	defer gdb.Delete(&models.User{}, user.ID)

	token, err := auth.GenerateAccessToken(&user, cfg.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	g := NewChatGateway(gdb, cfg)
	got, err := g.VerifySocketToken(token)
	if err != nil {
		t.Fatalf("VerifySocketToken: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("resolved user %d, want %d", got.ID, user.ID)
	}
	if !got.LastSeen.After(stale.Add(time.Hour)) {
		t.Errorf("last_seen not refreshed: %v", got.LastSeen)
	}

	var reloaded models.User
	if err := gdb.First(&reloaded, user.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !reloaded.LastSeen.After(stale.Add(time.Hour)) {
		t.Errorf("stored last_seen not refreshed: %v", reloaded.LastSeen)
	}
}
