package service

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bandhannova07/blinders-secure-chat/internal/config"
	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	maxImageBytes = 10 << 20
	maxFileBytes  = 25 << 20
)

// Sniffed content types accepted for upload, mapped to the message
// kind they produce.
var allowedMime = map[string]string{
	"image/jpeg":      models.MessageImage,
	"image/png":       models.MessageImage,
	"image/gif":       models.MessageImage,
	"image/webp":      models.MessageImage,
	"application/pdf": models.MessageFile,
	"application/zip": models.MessageFile,
	"text/plain":      models.MessageFile,
}

// Extensions rejected outright no matter what the content sniffs as.
var blockedExt = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".sh": true, ".js": true, ".vbs": true, ".scr": true,
	".ps1": true, ".jar": true, ".msi": true,
}

// The EICAR test string, the standard probe for scanner plumbing.
const eicarSignature = `X5O!P%@AP[4\PZX54(P^)7CC)7}$EICAR-STANDARD-ANTIVIRUS-TEST-FILE!$H+H*`

// MediaService stores uploads on disk after a content scan.
type MediaService struct {
	db  *gorm.DB
	cfg config.Config
}

func NewMediaService(db *gorm.DB, cfg config.Config) *MediaService {
	return &MediaService{db: db, cfg: cfg}
}

type UploadResult struct {
	URL          string `json:"url"`
	StoredName   string `json:"stored_name"`
	OriginalName string `json:"original_name"`
	MimeType     string `json:"mime_type"`
	SizeBytes    int64  `json:"size_bytes"`
	Kind         string `json:"kind"`
}

// ScanUpload is a placeholder for a real antivirus engine: it flags
// the EICAR signature and blocked extensions.
func ScanUpload(originalName string, content []byte) string {
	if blockedExt[strings.ToLower(filepath.Ext(originalName))] {
		return models.ScanInfected
	}
	if len(content) > 0 && strings.Contains(string(content[:min(len(content), 4096)]), eicarSignature) {
		return models.ScanInfected
	}
	return models.ScanClean
}

// Upload validates, scans and stores one file. The stored name is a
// fresh UUID so original names never hit the filesystem.
func (s *MediaService) Upload(uploader *models.User, fh *multipart.FileHeader) (*UploadResult, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return nil, err
	}
	head = head[:n]

	mimeType := http.DetectContentType(head)
	// DetectContentType appends charset parameters for text.
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	kind, ok := allowedMime[mimeType]
	if !ok {
		return nil, ErrFileTypeBlocked
	}
	limit := int64(maxFileBytes)
	if kind == models.MessageImage {
		limit = maxImageBytes
	}
	if fh.Size > limit {
		return nil, ErrFileTooLarge
	}

	rest, err := io.ReadAll(io.LimitReader(f, limit))
	if err != nil {
		return nil, err
	}
	content := append(head, rest...)

	if ScanUpload(fh.Filename, content) != models.ScanClean {
		// Record the rejection so admins can see what was attempted.
		s.db.Create(&models.Media{
			StoredName:   uuid.NewString(),
			OriginalName: fh.Filename,
			MimeType:     mimeType,
			SizeBytes:    fh.Size,
			Kind:         kind,
			ScanStatus:   models.ScanInfected,
			UploaderID:   uploader.ID,
		})
		return nil, ErrFileInfected
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(fh.Filename))
	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(s.cfg.UploadDir, storedName)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, err
	}

	media := models.Media{
		StoredName:   storedName,
		OriginalName: fh.Filename,
		MimeType:     mimeType,
		SizeBytes:    int64(len(content)),
		Kind:         kind,
		ScanStatus:   models.ScanClean,
		UploaderID:   uploader.ID,
	}
	if err := s.db.Create(&media).Error; err != nil {
		// Best effort: do not leave orphan files behind.
		if rmErr := os.Remove(path); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", path).Msg("orphan upload left on disk")
		}
		return nil, err
	}

	return &UploadResult{
		URL:          "/uploads/" + storedName,
		StoredName:   storedName,
		OriginalName: media.OriginalName,
		MimeType:     media.MimeType,
		SizeBytes:    media.SizeBytes,
		Kind:         media.Kind,
	}, nil
}

// List returns recent uploads, newest first.
func (s *MediaService) List(limit int) ([]models.Media, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []models.Media
	err := s.db.Order("id desc").Limit(limit).Find(&out).Error
	return out, err
}

// Delete removes an upload from disk and the index. Uploaders remove
// their own files, admins remove anything.
func (s *MediaService) Delete(actor *models.User, mediaID uint) error {
	var media models.Media
	if err := s.db.First(&media, mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}
	if media.UploaderID != actor.ID && !role.IsAdmin(actor.Role) {
		return ErrNotAllowed
	}
	if media.ScanStatus == models.ScanClean {
		path := filepath.Join(s.cfg.UploadDir, media.StoredName)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return s.db.Delete(&models.Media{}, media.ID).Error
}
