// Package capture produces the opaque photo strings attached to check-ins
// and check-outs.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// DefaultMaxBytes caps the size of a captured image.
const DefaultMaxBytes = 5 << 20

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image too large")
)

// FileCamera "captures" by reading an image file, typically one just taken
// by a webcam tool. The result is a data URL.
type FileCamera struct {
	Path     string
	MaxBytes int64
}

// Capture reads and encodes the image.
func (c FileCamera) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	limit := c.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	info, err := os.Stat(c.Path)
	if err != nil {
		return "", fmt.Errorf("reading photo: %w", err)
	}
	if info.Size() > limit {
		return "", fmt.Errorf("%s is %d bytes (max %d): %w", c.Path, info.Size(), limit, ErrTooLarge)
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", fmt.Errorf("reading photo: %w", err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s (%s): %w", c.Path, mime, ErrNotImage)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
