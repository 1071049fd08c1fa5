package models

import "time"

// User account statuses. New signups sit in pending until the President
// approves or declines them.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Message kinds.
const (
	MessageText  = "text"
	MessageFile  = "file"
	MessageImage = "image"
)

// Media scan verdicts.
const (
	ScanClean    = "clean"
	ScanInfected = "infected"
	ScanError    = "error"
)

type User struct {
	ID           uint    `gorm:"primaryKey"`
	Username     string  `gorm:"uniqueIndex;size:64;not null"`
	Email        *string `gorm:"uniqueIndex;size:128"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"size:32;not null"`
	Status       string  `gorm:"size:16;not null;default:pending"`

	// The permanent President account can never be modified or removed.
	IsPermanent bool `gorm:"not null;default:false"`
	IsActive    bool `gorm:"not null;default:true"`
	IsBanned    bool `gorm:"not null;default:false"`

	TwoFactorSecret   string `gorm:"size:64"`
	TwoFactorEnabled  bool   `gorm:"not null;default:false"`
	SecretCodeHash    string `gorm:"size:128"`
	SecretCodeEnabled bool   `gorm:"not null;default:false"`

	LastSeen  time.Time
	LastLogin *time.Time
	CreatedBy *uint
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Room struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"uniqueIndex;size:128;not null"`
	Role         string `gorm:"size:32;not null"`
	Description  string `gorm:"size:512"`
	IsActive     bool   `gorm:"not null;default:true"`
	CreatedBy    uint   `gorm:"not null"`
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Message struct {
	ID          uint   `gorm:"primaryKey"`
	RoomID      uint   `gorm:"index:idx_msg_room_created;not null"`
	SenderID    uint   `gorm:"index;not null"`
	Content     string `gorm:"type:text;not null"`
	MessageType string `gorm:"size:16;not null;default:text"`

	FileURL  string `gorm:"size:512"`
	FileName string `gorm:"size:256"`
	FileSize *int64

	IsEncrypted bool `gorm:"not null;default:false"`
	IsDeleted   bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"index:idx_msg_room_created"`
}

type Media struct {
	ID           uint   `gorm:"primaryKey"`
	StoredName   string `gorm:"uniqueIndex;size:128;not null"`
	OriginalName string `gorm:"size:256;not null"`
	MimeType     string `gorm:"size:128;not null"`
	SizeBytes    int64  `gorm:"not null"`
	Kind         string `gorm:"size:16;not null"`
	ScanStatus   string `gorm:"size:16;not null"`
	UploaderID   uint   `gorm:"index;not null"`
	CreatedAt    time.Time
}

type Notification struct {
	ID          uint   `gorm:"primaryKey"`
	RecipientID uint   `gorm:"index;not null"`
	SenderID    uint   `gorm:"not null"`
	Type        string `gorm:"size:32;not null"`
	Title       string `gorm:"size:128;not null"`
	Body        string `gorm:"type:text"`
	IsRead      bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
}
