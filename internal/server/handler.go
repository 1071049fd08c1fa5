package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
	"github.com/bandhannova07/blinders-secure-chat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Handler aggregates the HTTP handlers. Services are injected so
// tests can run it against a throwaway database.
type Handler struct {
	users    *service.UserService
	admin    *service.AdminService
	rooms    *service.RoomService
	messages *service.MessageService
	media    *service.MediaService
}

func NewHandler(users *service.UserService, admin *service.AdminService, rooms *service.RoomService, messages *service.MessageService, media *service.MediaService) *Handler {
	return &Handler{users: users, admin: admin, rooms: rooms, messages: messages, media: media}
}

// respondErr maps business errors to HTTP status codes. Unknown
// errors are logged and masked as 500.
func respondErr(c *gin.Context, err error, logMsg string) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUsernameTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSecretCode),
		errors.Is(err, service.ErrInvalidTOTPCode):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrAccountBanned),
		errors.Is(err, service.ErrPendingApproval),
		errors.Is(err, service.ErrAccountRejected),
		errors.Is(err, service.ErrNotAllowed),
		errors.Is(err, service.ErrPermanentAccount):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrMediaNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidRole):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrFileTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrFileTypeBlocked):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, service.ErrFileInfected):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg(logMsg)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// Signup handles new account requests.
func (h *Handler) Signup(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 2 || len(req.Username) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username"})
		return
	}
	if len(req.Password) < 8 || len(req.Password) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be 8 to 128 characters"})
		return
	}
	result, err := h.users.Signup(req.Username, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		respondErr(c, err, "signup")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       result.ID,
		"username": result.Username,
		"status":   result.Status,
		"message":  "signup received, waiting for approval",
	})
}

// Login handles credential checks and second-factor challenges.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username   string `json:"username"`
		Password   string `json:"password"`
		SecretCode string `json:"secret_code"`
		TOTPCode   string `json:"totp_code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	result, err := h.users.Login(req.Username, req.Password, req.SecretCode, req.TOTPCode)
	if err != nil {
		respondErr(c, err, "login")
		return
	}
	if result.RequiresSecretCode || result.RequiresTwoFactor {
		c.JSON(http.StatusOK, gin.H{
			"requires_secret_code": result.RequiresSecretCode,
			"requires_two_factor":  result.RequiresTwoFactor,
		})
		return
	}
	u := result.User
	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"user": gin.H{
			"id":        u.ID,
			"username":  u.Username,
			"role":      u.Role,
			"role_icon": role.Icon(u.Role),
		},
	})
}

// Me returns the authenticated user's own profile.
func (h *Handler) Me(c *gin.Context) {
	u := auth.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{
		"id":                  u.ID,
		"username":            u.Username,
		"role":                u.Role,
		"role_icon":           role.Icon(u.Role),
		"role_name":           role.DisplayName(u.Role),
		"status":              u.Status,
		"is_permanent":        u.IsPermanent,
		"two_factor_enabled":  u.TwoFactorEnabled,
		"secret_code_enabled": u.SecretCodeEnabled,
	})
}

// Directory lists approved members with online state.
func (h *Handler) Directory(c *gin.Context) {
	members, err := h.users.Directory()
	if err != nil {
		respondErr(c, err, "directory")
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// UpdateUsername renames the caller's account.
func (h *Handler) UpdateUsername(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 2 || len(req.Username) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid username"})
		return
	}
	if err := h.users.UpdateUsername(auth.CurrentUser(c), req.Username); err != nil {
		respondErr(c, err, "update username")
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": req.Username})
}

// ChangePassword rotates the caller's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if len(req.NewPassword) < 8 || len(req.NewPassword) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be 8 to 128 characters"})
		return
	}
	if err := h.users.ChangePassword(auth.CurrentUser(c), req.OldPassword, req.NewPassword); err != nil {
		respondErr(c, err, "change password")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

// SetupTwoFactor provisions a TOTP secret.
func (h *Handler) SetupTwoFactor(c *gin.Context) {
	setup, err := h.users.SetupTwoFactor(auth.CurrentUser(c))
	if err != nil {
		respondErr(c, err, "2fa setup")
		return
	}
	c.JSON(http.StatusOK, setup)
}

// EnableTwoFactor confirms the first TOTP code and arms the factor.
func (h *Handler) EnableTwoFactor(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.users.EnableTwoFactor(auth.CurrentUser(c), req.Code); err != nil {
		respondErr(c, err, "2fa enable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "two-factor enabled"})
}

// DisableTwoFactor disarms the TOTP factor after a final code check.
func (h *Handler) DisableTwoFactor(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.users.DisableTwoFactor(auth.CurrentUser(c), req.Code); err != nil {
		respondErr(c, err, "2fa disable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "two-factor disabled"})
}

// SetupSecretCode arms the President's extra login code.
func (h *Handler) SetupSecretCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Code) < 6 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret code must be at least 6 characters"})
		return
	}
	if err := h.users.SetupSecretCode(auth.CurrentUser(c), req.Code); err != nil {
		respondErr(c, err, "secret code setup")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "secret code enabled"})
}

// DisableSecretCode disarms the extra login code.
func (h *Handler) DisableSecretCode(c *gin.Context) {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.users.DisableSecretCode(auth.CurrentUser(c), req.Code); err != nil {
		respondErr(c, err, "secret code disable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "secret code disabled"})
}

// Notifications returns the caller's notifications.
func (h *Handler) Notifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.users.Notifications(auth.CurrentUser(c).ID, limit)
	if err != nil {
		respondErr(c, err, "list notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": items})
}

// MarkNotificationRead marks one of the caller's notifications read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.users.MarkNotificationRead(auth.CurrentUser(c).ID, id); err != nil {
		respondErr(c, err, "mark notification read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "read"})
}

// ListRooms returns the rooms the caller's rank admits.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListAccessible(auth.CurrentUser(c))
	if err != nil {
		respondErr(c, err, "list rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom returns one room the caller may enter.
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	room, err := h.rooms.Get(auth.CurrentUser(c), id)
	if err != nil {
		respondErr(c, err, "get room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// ListMessages pages through a room's history.
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	var beforeID uint
	if bid := c.Query("before_id"); bid != "" {
		if v, err := strconv.Atoi(bid); err == nil && v > 0 {
			beforeID = uint(v)
		}
	}
	msgs, err := h.messages.ListByRoom(auth.CurrentUser(c), id, limit, beforeID)
	if err != nil {
		respondErr(c, err, "list messages")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// DeleteMessage soft-deletes a message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.messages.Delete(auth.CurrentUser(c), id); err != nil {
		respondErr(c, err, "delete message")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// Upload stores a media file after scanning it.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	result, err := h.media.Upload(auth.CurrentUser(c), fh)
	if err != nil {
		respondErr(c, err, "upload")
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteMedia removes an upload.
func (h *Handler) DeleteMedia(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.media.Delete(auth.CurrentUser(c), id); err != nil {
		respondErr(c, err, "delete media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}
