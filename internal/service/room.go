package service

import (
	"errors"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
	"github.com/bandhannova07/blinders-secure-chat/internal/ws"

	"gorm.io/gorm"
)

// RoomService covers room listing and administration.
type RoomService struct {
	db  *gorm.DB
	hub *ws.Hub
}

func NewRoomService(db *gorm.DB, hub *ws.Hub) *RoomService {
	return &RoomService{db: db, hub: hub}
}

type RoomDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Role        string `json:"role"`
	RoleIcon    string `json:"role_icon"`
	Description string `json:"description,omitempty"`
	Online      int    `json:"online"`
}

func (s *RoomService) toDTO(r *models.Room) RoomDTO {
	return RoomDTO{
		ID:          r.ID,
		Name:        r.Name,
		Role:        r.Role,
		RoleIcon:    role.Icon(r.Role),
		Description: r.Description,
		Online:      s.hub.Online(r.ID),
	}
}

// Create adds a room gated at the given role.
func (s *RoomService) Create(creator *models.User, name, requiredRole, description string) (*RoomDTO, error) {
	if !role.Valid(requiredRole) {
		return nil, ErrInvalidRole
	}
	// Nobody creates rooms they could not enter themselves.
	if !role.CanAccess(creator.Role, requiredRole) {
		return nil, ErrNotAllowed
	}
	room := models.Room{
		Name:        name,
		Role:        requiredRole,
		Description: description,
		IsActive:    true,
		CreatedBy:   creator.ID,
	}
	if err := s.db.Create(&room).Error; err != nil {
		return nil, err
	}
	dto := s.toDTO(&room)
	return &dto, nil
}

// ListAccessible returns only the rooms the user's rank admits, with
// live occupancy counts.
func (s *RoomService) ListAccessible(user *models.User) ([]RoomDTO, error) {
	var rooms []models.Room
	if err := s.db.Where("is_active = true").Order("id asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	out := make([]RoomDTO, 0, len(rooms))
	for _, r := range rooms {
		if !role.CanAccess(user.Role, r.Role) {
			continue
		}
		out = append(out, s.toDTO(&r))
	}
	return out, nil
}

// ListAll returns every room including inactive ones, for admins.
func (s *RoomService) ListAll() ([]RoomDTO, error) {
	var rooms []models.Room
	if err := s.db.Order("id asc").Find(&rooms).Error; err != nil {
		return nil, err
	}
	out := make([]RoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, s.toDTO(&r))
	}
	return out, nil
}

// Get returns a room the user may enter.
func (s *RoomService) Get(user *models.User, roomID uint) (*RoomDTO, error) {
	room, err := s.find(roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive || !role.CanAccess(user.Role, room.Role) {
		return nil, ErrNotAllowed
	}
	dto := s.toDTO(room)
	return &dto, nil
}

// SetActive opens or closes a room without losing its history.
func (s *RoomService) SetActive(roomID uint, active bool) error {
	room, err := s.find(roomID)
	if err != nil {
		return err
	}
	return s.db.Model(room).Update("is_active", active).Error
}

// Delete removes a room and purges its messages.
func (s *RoomService) Delete(roomID uint) error {
	room, err := s.find(roomID)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Room{}, room.ID).Error
	})
}

func (s *RoomService) find(roomID uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &room, nil
}
