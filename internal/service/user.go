package service

import (
	"errors"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"gorm.io/gorm"
)

// UserService covers signup, login and account self-management.
type UserService struct {
	db  *gorm.DB
	cfg config.Config
	hub *ws.Hub
}

func NewUserService(db *gorm.DB, cfg config.Config, hub *ws.Hub) *UserService {
	return &UserService{db: db, cfg: cfg, hub: hub}
}

type SignupResult struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// Signup creates a pending shield-circle account and notifies the
// President so it shows up in the approval queue.
func (s *UserService) Signup(username, email, password string) (*SignupResult, error) {
	var count int64
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role.ShieldCircle,
		Status:       models.StatusPending,
		IsActive:     true,
	}
	if email != "" {
		user.Email = &email
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	s.notifyJoinRequest(&user)
	return &SignupResult{ID: user.ID, Username: user.Username, Status: user.Status}, nil
}

func (s *UserService) notifyJoinRequest(newcomer *models.User) {
	var presidents []models.User
	if err := s.db.Select("id").Where("role = ?", role.President).Find(&presidents).Error; err != nil {
		return
	}
	for _, p := range presidents {
		n := models.Notification{
			RecipientID: p.ID,
			SenderID:    newcomer.ID,
			Type:        "join_request",
			Title:       "New join request",
			Body:        newcomer.Username + " is waiting for approval",
		}
		s.db.Create(&n)
	}
	s.hub.NotifyRole(role.President, ws.EventNewJoinRequest, map[string]any{
		"user_id":  newcomer.ID,
		"username": newcomer.Username,
	})
}

type LoginResult struct {
	AccessToken        string      `json:"access_token,omitempty"`
	RequiresSecretCode bool        `json:"requires_secret_code,omitempty"`
	RequiresTwoFactor  bool        `json:"requires_two_factor,omitempty"`
	User               models.User `json:"-"`
}

// Login verifies the credentials and any second factors the account
// has enabled. A missing factor code yields a challenge flag instead
// of a token.
func (s *UserService) Login(username, password, secretCode, totpCode string) (*LoginResult, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.IsBanned || !user.IsActive {
		return nil, ErrAccountBanned
	}
	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// The President never sits in the approval queue.
	if user.Role != role.President {
		switch user.Status {
		case models.StatusPending:
			return nil, ErrPendingApproval
		case models.StatusRejected:
			return nil, ErrAccountRejected
		}
	}

	if user.SecretCodeEnabled {
		if secretCode == "" {
			return &LoginResult{RequiresSecretCode: true, User: user}, nil
		}
		if !auth.VerifyPassword(user.SecretCodeHash, secretCode) {
			return nil, ErrInvalidSecretCode
		}
	}
	if user.TwoFactorEnabled {
		if totpCode == "" {
			return &LoginResult{RequiresTwoFactor: true, User: user}, nil
		}
		if !auth.VerifyTOTP(user.TwoFactorSecret, totpCode) {
			return nil, ErrInvalidTOTPCode
		}
	}

	ttl := time.Duration(s.cfg.AccessTokenTTLHours) * time.Hour
	if user.Role == role.President {
		ttl = time.Duration(s.cfg.PresidentTokenTTLMinutes) * time.Minute
	}
	token, err := auth.GenerateAccessToken(&user, s.cfg.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s.db.Model(&user).Updates(map[string]any{"last_login": now, "last_seen": now})
	return &LoginResult{AccessToken: token, User: user}, nil
}

// UpdateUsername renames the account; the permanent President account
// keeps its name.
func (s *UserService) UpdateUsername(user *models.User, newUsername string) error {
	if user.IsPermanent {
		return ErrPermanentAccount
	}
	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? AND id <> ?", newUsername, user.ID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUsernameTaken
	}
	return s.db.Model(user).Update("username", newUsername).Error
}

func (s *UserService) ChangePassword(user *models.User, oldPassword, newPassword string) error {
	if !auth.VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.Model(user).Update("password_hash", hash).Error
}

type MemberDTO struct {
	ID       uint      `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	RoleIcon string    `json:"role_icon"`
	IsOnline bool      `json:"is_online"`
	LastSeen time.Time `json:"last_seen"`
}

// Directory lists approved members, highest ranks first.
func (s *UserService) Directory() ([]MemberDTO, error) {
	var users []models.User
	if err := s.db.Where("status = ? AND is_banned = false", models.StatusApproved).
		Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]MemberDTO, 0, len(users))
	for lvl := role.Level(role.President); lvl >= 1; lvl-- {
		for _, u := range users {
			if role.Level(u.Role) != lvl {
				continue
			}
			out = append(out, MemberDTO{
				ID:       u.ID,
				Username: u.Username,
				Role:     u.Role,
				RoleIcon: role.Icon(u.Role),
				IsOnline: s.hub.UserOnline(u.ID),
				LastSeen: u.LastSeen,
			})
		}
	}
	return out, nil
}

type TwoFactorSetup struct {
	Secret string `json:"secret"`
	QRCode string `json:"qr_code"`
}

// SetupTwoFactor provisions a TOTP secret; it stays disabled until the
// first code is verified.
func (s *UserService) SetupTwoFactor(user *models.User) (*TwoFactorSetup, error) {
	secret, otpauthURL, err := auth.GenerateTOTPSecret(user.Username)
	if err != nil {
		return nil, err
	}
	qr, err := auth.QRCodeDataURL(otpauthURL)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(user).Update("two_factor_secret", secret).Error; err != nil {
		return nil, err
	}
	return &TwoFactorSetup{Secret: secret, QRCode: qr}, nil
}

func (s *UserService) EnableTwoFactor(user *models.User, code string) error {
	if user.TwoFactorSecret == "" || !auth.VerifyTOTP(user.TwoFactorSecret, code) {
		return ErrInvalidTOTPCode
	}
	return s.db.Model(user).Update("two_factor_enabled", true).Error
}

func (s *UserService) DisableTwoFactor(user *models.User, code string) error {
	if !user.TwoFactorEnabled {
		return ErrNotAllowed
	}
	if !auth.VerifyTOTP(user.TwoFactorSecret, code) {
		return ErrInvalidTOTPCode
	}
	return s.db.Model(user).Updates(map[string]any{
		"two_factor_enabled": false,
		"two_factor_secret":  "",
	}).Error
}

// SetupSecretCode arms the extra login code. Reserved for the
// President account.
func (s *UserService) SetupSecretCode(user *models.User, code string) error {
	if user.Role != role.President {
		return ErrNotAllowed
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		return err
	}
	return s.db.Model(user).Updates(map[string]any{
		"secret_code_hash":    hash,
		"secret_code_enabled": true,
	}).Error
}

func (s *UserService) DisableSecretCode(user *models.User, code string) error {
	if !user.SecretCodeEnabled {
		return ErrNotAllowed
	}
	if !auth.VerifyPassword(user.SecretCodeHash, code) {
		return ErrInvalidSecretCode
	}
	return s.db.Model(user).Updates(map[string]any{
		"secret_code_enabled": false,
		"secret_code_hash":    "",
	}).Error
}

// Notifications returns the user's notifications, newest first.
func (s *UserService) Notifications(userID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Notification
	err := s.db.Where("recipient_id = ?", userID).
		Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

func (s *UserService) MarkNotificationRead(userID, notificationID uint) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotAllowed
	}
	return nil
}
