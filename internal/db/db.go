package db

import (
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/auth"
	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a Postgres connection with a short retry loop so the
// server survives the database container coming up after it.
func Connect(dsn string) (*gorm.DB, error) {
	var gdb *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetConnMaxLifetime(time.Hour)
				return gdb, nil
			}
			err = err2
		}
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, err
}

// Migrate creates or updates all tables.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.Message{},
		&models.Media{},
		&models.Notification{},
	)
}

// Seed makes sure the permanent President account and the five default
// rooms exist. Runs on every startup and is idempotent.
func Seed(gdb *gorm.DB, cfg config.Config) error {
	president, err := ensurePresident(gdb, cfg)
	if err != nil {
		return err
	}
	return ensureDefaultRooms(gdb, president.ID)
}

func ensurePresident(gdb *gorm.DB, cfg config.Config) (*models.User, error) {
	var president models.User
	err := gdb.Where("username = ? AND role = ?", cfg.PresidentUsername, role.President).First(&president).Error
	if err == nil {
		if !president.IsPermanent {
			president.IsPermanent = true
			if err := gdb.Save(&president).Error; err != nil {
				return nil, err
			}
		}
		return &president, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	password := cfg.PresidentPassword
	if password == "" {
		// Dev fallback only. Set PRESIDENT_PASSWORD outside dev.
		password = "change-me-president"
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	president = models.User{
		Username:     cfg.PresidentUsername,
		PasswordHash: hash,
		Role:         role.President,
		Status:       models.StatusApproved,
		IsPermanent:  true,
		IsActive:     true,
		LastSeen:     time.Now(),
	}
	if err := gdb.Create(&president).Error; err != nil {
		return nil, err
	}
	log.Info().Str("username", president.Username).Msg("permanent President account created")
	return &president, nil
}

var defaultRooms = []models.Room{
	{Name: "President Chamber", Role: role.President, Description: "Private room for the President"},
	{Name: "Leadership Council", Role: role.VicePresident, Description: "President and Vice President discussions"},
	{Name: "Core Team Hub", Role: role.TeamCore, Description: "Trusted inner circle communications"},
	{Name: "Study Hall", Role: role.StudyCircle, Description: "Research and knowledge sharing"},
	{Name: "Shield Operations", Role: role.ShieldCircle, Description: "Protection and moderation discussions"},
}

func ensureDefaultRooms(gdb *gorm.DB, creatorID uint) error {
	for _, r := range defaultRooms {
		var count int64
		if err := gdb.Model(&models.Room{}).Where("name = ?", r.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		room := r
		room.CreatedBy = creatorID
		room.IsActive = true
		room.LastActivity = time.Now()
		if err := gdb.Create(&room).Error; err != nil {
			return err
		}
		log.Info().Str("room", room.Name).Str("role", room.Role).Msg("default room created")
	}
	return nil
}
