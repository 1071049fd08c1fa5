package ws

import (
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

// DenyReason explains why room access was refused. DenyNone means admit.
type DenyReason string

const (
	DenyNone             DenyReason = ""
	DenyRoomNotFound     DenyReason = CodeRoomNotFound
	DenyRoomInactive     DenyReason = CodeRoomInactive
	DenyInsufficientRole DenyReason = CodeInsufficientRole
)

// Message returns the user-facing error text for a deny reason.
func (d DenyReason) Message() string {
	switch d {
	case DenyRoomNotFound:
		return "room not found"
	case DenyRoomInactive:
		return "room is not active"
	case DenyInsufficientRole:
		return "access denied to this room"
	}
	return ""
}

// Authorize decides whether a user with userRole may read or write in
// room. Pure: no side effects, unknown roles degrade to deny. Called at
// both join time and send time.
func Authorize(userRole string, room *models.Room) DenyReason {
	if room == nil {
		return DenyRoomNotFound
	}
	if !room.IsActive {
		return DenyRoomInactive
	}
	if !role.CanAccess(userRole, room.Role) {
		return DenyInsufficientRole
	}
	return DenyNone
}
