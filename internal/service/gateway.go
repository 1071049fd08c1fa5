package service

import (
	"errors"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ChatGateway implements the hub's Authenticator, RoomStore and
// MessageStore over gorm.
type ChatGateway struct {
	db  *gorm.DB
	cfg config.Config
}

func NewChatGateway(db *gorm.DB, cfg config.Config) *ChatGateway {
	return &ChatGateway{db: db, cfg: cfg}
}

// VerifySocketToken resolves a JWT presented over the socket to a
// fresh user row, so bans applied after issue still take effect.
func (g *ChatGateway) VerifySocketToken(token string) (*models.User, error) {
	claims, err := auth.ParseAccessToken(token, g.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := g.db.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	// Best effort; a socket authenticate counts as activity.
	now := time.Now()
	if err := g.db.Model(&models.User{}).Where("id = ?", user.ID).
		Update("last_seen", now).Error; err != nil {
		log.Warn().Err(err).Uint("user_id", user.ID).Msg("touch last_seen")
	} else {
		user.LastSeen = now
	}
	return &user, nil
}

func (g *ChatGateway) FindRoomByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := g.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ws.ErrNotFound
		}
		return nil, err
	}
	return &room, nil
}

func (g *ChatGateway) TouchActivity(roomID uint) error {
	return g.db.Model(&models.Room{}).Where("id = ?", roomID).
		Update("last_activity", time.Now()).Error
}

func (g *ChatGateway) PersistMessage(m *models.Message) error {
	return g.db.Create(m).Error
}
