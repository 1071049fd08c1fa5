package service

import (
	"errors"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"gorm.io/gorm"
)

// AdminService covers the approval queue and member administration.
// Every method takes the acting admin so rank rules apply server-side.
type AdminService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewAdminService(db *gorm.DB, hub *ws.Hub) *AdminService {
	return &AdminService{db: db, hub: hub}
}

// Roles the President may hand out on approval. Leadership roles are
// granted later through UpdateRole, never straight from the queue.
var approvalRoles = map[string]bool{
	role.ShieldCircle: true,
	role.StudyCircle:  true,
	role.TeamCore:     true,
}

func (s *AdminService) findUser(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account for the admin panel.
func (s *AdminService) ListUsers() ([]models.User, error) {
	var users []models.User
	err := s.db.Order("id asc").Find(&users).Error
	return users, err
}

// PendingRequests returns the approval queue, oldest first.
func (s *AdminService) PendingRequests() ([]models.User, error) {
	var users []models.User
	err := s.db.Where("status = ?", models.StatusPending).
		Order("id asc").Find(&users).Error
	return users, err
}

// Approve admits a pending account with the given role and tells the
// user if they are online.
func (s *AdminService) Approve(admin *models.User, userID uint, assignRole string) (*models.User, error) {
	if !approvalRoles[assignRole] {
		return nil, ErrInvalidRole
	}
	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}
	if user.Status != models.StatusPending {
		return nil, ErrNotAllowed
	}
	updates := map[string]any{
		"status":     models.StatusApproved,
		"role":       assignRole,
		"created_by": admin.ID,
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	s.db.Create(&models.Notification{
		RecipientID: user.ID,
		SenderID:    admin.ID,
		Type:        "approval",
		Title:       "Welcome aboard",
		Body:        "Your account was approved as " + role.DisplayName(assignRole),
	})
	s.hub.NotifyUser(user.ID, ws.EventNotification, map[string]any{
		"type": "approval",
		"role": assignRole,
	})
	return user, nil
}

// Decline rejects a pending account.
func (s *AdminService) Decline(admin *models.User, userID uint) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.Status != models.StatusPending {
		return ErrNotAllowed
	}
	return s.db.Model(user).Updates(map[string]any{
		"status":     models.StatusRejected,
		"created_by": admin.ID,
	}).Error
}

// UpdateRole changes a member's rank. The presidency itself is never
// assignable and nobody edits their own rank or the permanent account.
func (s *AdminService) UpdateRole(admin *models.User, userID uint, newRole string) error {
	if newRole == role.President || !role.Valid(newRole) {
		return ErrInvalidRole
	}
	if admin.ID == userID {
		return ErrNotAllowed
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.IsPermanent {
		return ErrPermanentAccount
	}
	// A vice-president only manages ranks below their own.
	if role.Level(newRole) >= role.Level(admin.Role) || role.Level(user.Role) >= role.Level(admin.Role) {
		return ErrNotAllowed
	}
	if err := s.db.Model(user).Update("role", newRole).Error; err != nil {
		return err
	}
	// Live sessions see the new rank on the next fan-out.
	s.hub.UpdateUserRole(user.ID, newRole)
	s.hub.NotifyUser(user.ID, ws.EventNotification, map[string]any{
		"type": "role_change",
		"role": newRole,
	})
	return nil
}

// SetBanned bans or unbans a member. Banning kicks any live session.
func (s *AdminService) SetBanned(admin *models.User, userID uint, banned bool) error {
	if admin.ID == userID {
		return ErrNotAllowed
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.IsPermanent {
		return ErrPermanentAccount
	}
	if role.Level(user.Role) >= role.Level(admin.Role) {
		return ErrNotAllowed
	}
	if err := s.db.Model(user).Update("is_banned", banned).Error; err != nil {
		return err
	}
	if banned {
		s.hub.EvictUser(user.ID, "account banned")
	}
	return nil
}

// DeleteUser removes an account entirely.
func (s *AdminService) DeleteUser(admin *models.User, userID uint) error {
	if admin.ID == userID {
		return ErrNotAllowed
	}
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.IsPermanent {
		return ErrPermanentAccount
	}
	if role.Level(user.Role) >= role.Level(admin.Role) {
		return ErrNotAllowed
	}
	s.hub.EvictUser(user.ID, "account removed")
	return s.db.Delete(&models.User{}, user.ID).Error
}

type Stats struct {
	TotalUsers      int64            `json:"total_users"`
	UsersByRole     map[string]int64 `json:"users_by_role"`
	PendingUsers    int64            `json:"pending_users"`
	BannedUsers     int64            `json:"banned_users"`
	TotalRooms      int64            `json:"total_rooms"`
	TotalMessages   int64            `json:"total_messages"`
	MessagesLast24h int64            `json:"messages_last_24h"`
	OnlineUsers     int              `json:"online_users"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// Stats aggregates the dashboard counters.
func (s *AdminService) Stats() (*Stats, error) {
	st := Stats{GeneratedAt: time.Now(), UsersByRole: make(map[string]int64, len(role.All))}
	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&st.TotalUsers, s.db.Model(&models.User{})},
		{&st.PendingUsers, s.db.Model(&models.User{}).Where("status = ?", models.StatusPending)},
		{&st.BannedUsers, s.db.Model(&models.User{}).Where("is_banned = true")},
		{&st.TotalRooms, s.db.Model(&models.Room{})},
		{&st.TotalMessages, s.db.Model(&models.Message{}).Where("is_deleted = false")},
		{&st.MessagesLast24h, s.db.Model(&models.Message{}).
			Where("is_deleted = false AND created_at > ?", time.Now().Add(-24*time.Hour))},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	for _, r := range role.All {
		var n int64
		if err := s.db.Model(&models.User{}).
			Where("role = ? AND status = ?", r, models.StatusApproved).Count(&n).Error; err != nil {
			return nil, err
		}
		st.UsersByRole[r] = n
	}
	st.OnlineUsers = s.hub.OnlineCount()
	return &st, nil
}
