package ws

import (
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"
)

func TestAuthorize(t *testing.T) {
	active := &models.Room{ID: 1, Name: "Core Team Hub", Role: role.TeamCore, IsActive: true}
	inactive := &models.Room{ID: 2, Name: "Archive", Role: role.ShieldCircle, IsActive: false}

	cases := []struct {
		name     string
		userRole string
		room     *models.Room
		want     DenyReason
	}{
		{"nil room", role.President, nil, DenyRoomNotFound},
		{"inactive room", role.President, inactive, DenyRoomInactive},
		{"below requirement", role.StudyCircle, active, DenyInsufficientRole},
		{"exact requirement", role.TeamCore, active, DenyNone},
		{"above requirement", role.VicePresident, active, DenyNone},
		{"president always admitted", role.President, active, DenyNone},
		{"unknown role", "stranger", active, DenyInsufficientRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Authorize(tc.userRole, tc.room); got != tc.want {
				t.Errorf("Authorize(%q, %v) = %q, want %q", tc.userRole, tc.room, got, tc.want)
			}
		})
	}
}

func TestDenyReasonMapping(t *testing.T) {
	cases := []struct {
		reason DenyReason
		code   string
	}{
		{DenyRoomNotFound, CodeRoomNotFound},
		{DenyRoomInactive, CodeRoomInactive},
		{DenyInsufficientRole, CodeInsufficientRole},
	}
	for _, tc := range cases {
		if string(tc.reason) != tc.code {
			t.Errorf("deny reason %q should map to code %q", tc.reason, tc.code)
		}
		if tc.reason.Message() == "" {
			t.Errorf("deny reason %q has no message", tc.reason)
		}
	}
}
