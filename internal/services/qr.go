package services

import (
	"fmt"
	"net/url"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	tcgdexCardPageURL = "https://www.tcgdex.net/database"
	qrSize            = 256
)

// CardPageURL returns the public TCGdex page for a card id like "swsh3-136"
func CardPageURL(cardID string) (string, error) {
	cardID = strings.TrimSpace(cardID)
	idx := strings.LastIndex(cardID, "-")
	if idx <= 0 || idx == len(cardID)-1 {
		return "", fmt.Errorf("%w: invalid card id %q", ErrValidation, cardID)
	}
	setID, localID := cardID[:idx], cardID[idx+1:]
	series := strings.TrimRight(strings.ReplaceAll(setID, ".", ""), "0123456789")
	return fmt.Sprintf("%s/%s/%s/%s", tcgdexCardPageURL,
		url.PathEscape(series), url.PathEscape(setID), url.PathEscape(localID)), nil
}

// CardQRCode renders a PNG QR code linking to the card's page
func CardQRCode(cardID string) ([]byte, error) {
	page, err := CardPageURL(cardID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(page, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	return png, nil
}
