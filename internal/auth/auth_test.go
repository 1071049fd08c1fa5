package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
	"github.com/bandhannova07/blinders-secure-chat/internal/role"

	"github.com/pquerna/otp/totp"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "password123", false},
		{"empty password", "", false},
		{"long password", strings.Repeat("a", 70), false}, // bcrypt max is 72 bytes
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && hash == "" {
				t.Error("HashPassword() returned empty hash")
			}
		})
	}
}

func TestHashPassword_DifferentHashes(t *testing.T) {
	password := "testpassword"
	hash1, _ := HashPassword(password)
	hash2, _ := HashPassword(password)

	if hash1 == hash2 {
		t.Error("HashPassword() should produce different hashes for same password")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testpassword123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name     string
		hash     string
		password string
		want     bool
	}{
		{"correct password", hash, password, true},
		{"wrong password", hash, "wrongpassword", false},
		{"empty password", hash, "", false},
		{"invalid hash", "invalidhash", password, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.hash, tt.password); got != tt.want {
				t.Errorf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	secret := "test-secret-key"
	user := &models.User{ID: 42, Username: "tommy", Role: role.TeamCore}

	token, err := GenerateAccessToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseAccessToken(token, secret)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("ParseAccessToken() UserID = %v, want 42", claims.UserID)
	}
	if claims.Username != "tommy" {
		t.Errorf("ParseAccessToken() Username = %v, want tommy", claims.Username)
	}
	if claims.Role != role.TeamCore {
		t.Errorf("ParseAccessToken() Role = %v, want %v", claims.Role, role.TeamCore)
	}
}

func TestParseAccessToken_Invalid(t *testing.T) {
	secret := "test-secret-key"
	user := &models.User{ID: 1, Username: "arthur", Role: role.ShieldCircle}
	token, err := GenerateAccessToken(user, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", token, "wrong-secret"},
		{"invalid token", "invalid.token.here", secret},
		{"empty token", "", secret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.token, tt.secret); err == nil {
				t.Error("ParseAccessToken() should return error")
			}
		})
	}
}

func TestParseAccessToken_Expired(t *testing.T) {
	secret := "test-secret"
	user := &models.User{ID: 1, Username: "john", Role: role.StudyCircle}
	token, err := GenerateAccessToken(user, secret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	claims, err := ParseAccessToken(token, secret)
	if err == nil {
		t.Error("ParseAccessToken() should return error for expired token")
	}
	if claims != nil {
		t.Error("ParseAccessToken() should return nil claims for expired token")
	}
}

func TestTOTP_RoundTrip(t *testing.T) {
	secret, url, err := GenerateTOTPSecret("tommy")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret() error = %v", err)
	}
	if secret == "" {
		t.Fatal("GenerateTOTPSecret() returned empty secret")
	}
	if !strings.HasPrefix(url, "otpauth://totp/") {
		t.Errorf("GenerateTOTPSecret() url = %v, want otpauth://totp/ prefix", url)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}

	if !VerifyTOTP(secret, code) {
		t.Error("VerifyTOTP() rejected a freshly generated code")
	}
	if VerifyTOTP(secret, "000000") {
		t.Error("VerifyTOTP() accepted a bogus code")
	}
}

func TestQRCodeDataURL(t *testing.T) {
	_, url, err := GenerateTOTPSecret("tommy")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret() error = %v", err)
	}

	dataURL, err := QRCodeDataURL(url)
	if err != nil {
		t.Fatalf("QRCodeDataURL() error = %v", err)
	}
	if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
		t.Errorf("QRCodeDataURL() = %.40v..., want data:image/png;base64 prefix", dataURL)
	}
}
