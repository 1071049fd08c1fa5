package service

import (
	"errors"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"gorm.io/gorm"
)

// MessageService covers message history and moderation.
type MessageService struct {
	db *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{db: db}
}

type MessageDTO struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	SenderID    uint      `json:"sender_id"`
	Username    string    `json:"username"`
	SenderRole  string    `json:"sender_role"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	FileURL     string    `json:"file_url,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListByRoom pages through a room's history, oldest first within the
// page. Access is gated by the caller's rank, same rule as joining.
func (s *MessageService) ListByRoom(user *models.User, roomID uint, limit int, beforeID uint) ([]MessageDTO, error) {
	var room models.Room
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	if !role.CanAccess(user.Role, room.Role) {
		return nil, ErrNotAllowed
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := s.db.Where("room_id = ? AND is_deleted = false", roomID)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []models.Message
	if err := q.Order("id desc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	senders, err := s.resolveSenders(msgs)
	if err != nil {
		return nil, err
	}
	out := make([]MessageDTO, 0, len(msgs))
	for _, m := range msgs {
		sender := senders[m.SenderID]
		out = append(out, MessageDTO{
			ID:          m.ID,
			RoomID:      m.RoomID,
			SenderID:    m.SenderID,
			Username:    sender.Username,
			SenderRole:  sender.Role,
			Content:     m.Content,
			MessageType: m.MessageType,
			FileURL:     m.FileURL,
			FileName:    m.FileName,
			CreatedAt:   m.CreatedAt,
		})
	}
	return out, nil
}

// resolveSenders batch-loads the usernames and roles for a page.
func (s *MessageService) resolveSenders(msgs []models.Message) (map[uint]models.User, error) {
	seen := make(map[uint]struct{}, len(msgs))
	ids := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		ids = append(ids, m.SenderID)
	}
	senders := make(map[uint]models.User, len(ids))
	if len(ids) > 0 {
		var users []models.User
		if err := s.db.Select("id", "username", "role").Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, err
		}
		for _, u := range users {
			senders[u.ID] = u
		}
	}
	return senders, nil
}

// Delete soft-deletes a message. Senders remove their own, admins
// remove anything.
func (s *MessageService) Delete(actor *models.User, messageID uint) error {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMessageNotFound
		}
		return err
	}
	if msg.SenderID != actor.ID && !role.IsAdmin(actor.Role) {
		return ErrNotAllowed
	}
	return s.db.Model(&msg).Update("is_deleted", true).Error
}
