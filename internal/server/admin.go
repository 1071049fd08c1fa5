package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"github.com/gin-gonic/gin"
)

// Admin panel handlers. All of these sit behind RequireAdmin or
// RequirePresident in the router.

func (h *Handler) AdminListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers()
	if err != nil {
		respondErr(c, err, "admin list users")
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{
			"id":           u.ID,
			"username":     u.Username,
			"role":         u.Role,
			"role_icon":    role.Icon(u.Role),
			"status":       u.Status,
			"is_banned":    u.IsBanned,
			"is_permanent": u.IsPermanent,
			"last_seen":    u.LastSeen,
			"created_at":   u.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h *Handler) AdminPendingRequests(c *gin.Context) {
	users, err := h.admin.PendingRequests()
	if err != nil {
		respondErr(c, err, "admin pending requests")
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, gin.H{"id": u.ID, "username": u.Username, "created_at": u.CreatedAt})
	}
	c.JSON(http.StatusOK, gin.H{"requests": out})
}

func (h *Handler) AdminApprove(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	user, err := h.admin.Approve(auth.CurrentUser(c), id, req.Role)
	if err != nil {
		respondErr(c, err, "admin approve")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username, "role": req.Role})
}

func (h *Handler) AdminDecline(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.admin.Decline(auth.CurrentUser(c), id); err != nil {
		respondErr(c, err, "admin decline")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "declined"})
}

func (h *Handler) AdminUpdateRole(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.admin.UpdateRole(auth.CurrentUser(c), id, req.Role); err != nil {
		respondErr(c, err, "admin update role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

func (h *Handler) AdminSetBanned(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Banned *bool `json:"banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Banned == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.admin.SetBanned(auth.CurrentUser(c), id, *req.Banned); err != nil {
		respondErr(c, err, "admin set banned")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.admin.DeleteUser(auth.CurrentUser(c), id); err != nil {
		respondErr(c, err, "admin delete user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.admin.Stats()
	if err != nil {
		respondErr(c, err, "admin stats")
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) AdminListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListAll()
	if err != nil {
		respondErr(c, err, "admin list rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *Handler) AdminCreateRoom(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Role        string `json:"role"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || len(req.Name) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room name"})
		return
	}
	room, err := h.rooms.Create(auth.CurrentUser(c), req.Name, req.Role, req.Description)
	if err != nil {
		respondErr(c, err, "admin create room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

func (h *Handler) AdminSetRoomActive(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.rooms.SetActive(id, *req.Active); err != nil {
		respondErr(c, err, "admin set room active")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "updated"})
}

func (h *Handler) AdminDeleteRoom(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.rooms.Delete(id); err != nil {
		respondErr(c, err, "admin delete room")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) AdminListMedia(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	items, err := h.media.List(limit)
	if err != nil {
		respondErr(c, err, "admin list media")
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": items})
}
