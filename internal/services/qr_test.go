package services

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
)

func TestCardPageURL(t *testing.T) {
	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"swsh3-136", "https://www.tcgdex.net/database/swsh/swsh3/136", false},
		{"sv03.5-025", "https://www.tcgdex.net/database/sv/sv03.5/025", false},
		{"noid", "", true},
		{"trailing-", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := CardPageURL(tt.id)
		if (err != nil) != tt.wantErr {
			t.Errorf("CardPageURL(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("CardPageURL(%q) error = %v, want ErrValidation", tt.id, err)
		}
		if got != tt.want {
			t.Errorf("CardPageURL(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestCardQRCode(t *testing.T) {
	data, err := CardQRCode("swsh3-136")
	if err != nil {
		t.Fatalf("CardQRCode() error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("QR code is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != qrSize || b.Dy() != qrSize {
		t.Errorf("QR code is %dx%d, want %dx%d", b.Dx(), b.Dy(), qrSize, qrSize)
	}
}
