package service

import (
	"testing"

	"github.com/bandhannova07/blinders-secure-chat/internal/models"
)

func TestScanUpload(t *testing.T) {
	cases := []struct {
		name     string
		fileName string
		content  string
		want     string
	}{
		{"plain text", "notes.txt", "meeting at nine", models.ScanClean},
		{"png header", "photo.png", "\x89PNG\r\n\x1a\n....", models.ScanClean},
		{"eicar signature", "totally-a-photo.png", eicarSignature, models.ScanInfected},
		{"eicar embedded", "report.pdf", "%PDF-1.4 " + eicarSignature, models.ScanInfected},
		{"blocked extension", "install.exe", "MZ", models.ScanInfected},
		{"blocked extension uppercase", "SCRIPT.PS1", "Write-Host hi", models.ScanInfected},
		{"empty file", "empty.txt", "", models.ScanClean},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ScanUpload(tc.fileName, []byte(tc.content)); got != tc.want {
				t.Errorf("ScanUpload(%q) = %q, want %q", tc.fileName, got, tc.want)
			}
		})
	}
}
