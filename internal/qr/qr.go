// Package qr renders the two QR artifacts the hunt needs: printable scan
// codes for evidence items and ephemeral cash-out confirmation codes shown
// on the player's screen.
package qr

import (
	"encoding/base64"
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// PrintSize is the PNG edge length for printable item sheets.
	PrintSize = 512
	// ScreenSize is the PNG edge length for on-screen cash-out codes.
	ScreenSize = 256
)

// ScanURL builds the URL a printed item code resolves to.
func ScanURL(baseURL, scanCode string) string {
	return fmt.Sprintf("%s/scan?code=%s", baseURL, url.QueryEscape(scanCode))
}

// ItemPNG renders a printable QR code for an evidence item's scan URL.
func ItemPNG(baseURL, scanCode string) ([]byte, error) {
	qr, err := qrcode.New(ScanURL(baseURL, scanCode), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(PrintSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	return png, nil
}

// DataURL renders the given URL as a QR PNG data URL suitable for direct
// embedding in an <img> tag.
func DataURL(target string) (string, error) {
	qr, err := qrcode.New(target, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	png, err := qr.PNG(ScreenSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
