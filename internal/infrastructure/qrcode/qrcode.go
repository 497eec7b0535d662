// Package qrcode renders provisioning URIs as QR images for authenticator apps.
package qrcode

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	MinSize     = 64
	MaxSize     = 1024
	DefaultSize = 256
)

// Encoder renders PNG and terminal QR codes
type Encoder struct {
	level qrcode.RecoveryLevel
}

// NewEncoder uses medium error correction: otpauth URIs are short, and a
// lower level keeps the module grid coarse enough for phone cameras.
func NewEncoder() *Encoder {
	return &Encoder{level: qrcode.Medium}
}

// PNG encodes content as a size x size PNG. A zero size means DefaultSize.
func (e *Encoder) PNG(content string, size int) ([]byte, error) {
	if size == 0 {
		size = DefaultSize
	}
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("qr size must be between %d and %d, got %d", MinSize, MaxSize, size)
	}
	png, err := qrcode.Encode(content, e.level, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// Terminal renders content with half-block characters for printing to a TTY
func (e *Encoder) Terminal(content string) (string, error) {
	qr, err := qrcode.New(content, e.level)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return qr.ToSmallString(false), nil
}
