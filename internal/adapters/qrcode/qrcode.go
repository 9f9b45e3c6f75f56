package qrcode

import (
	"encoding/base64"
	"fmt"

	qr "github.com/skip2/go-qrcode"

	"openmic/internal/domain"
)

const dataURLPrefix = "data:image/png;base64,"

// PNGGenerator renders QR codes as base64 PNG data URLs.
type PNGGenerator struct {
	size  int
	level qr.RecoveryLevel
}

// NewPNGGenerator returns a generator producing size x size pixel images.
func NewPNGGenerator(size int) *PNGGenerator {
	if size <= 0 {
		size = 256
	}
	return &PNGGenerator{size: size, level: qr.Medium}
}

var _ domain.QRCodeGenerator = (*PNGGenerator)(nil)

func (g *PNGGenerator) DataURL(content string) (string, error) {
	png, err := qr.Encode(content, g.level, g.size)
	if err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
