package capture

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestFileCamera_EncodesImageAsDataURL(t *testing.T) {
	path := writeFile(t, "in.png", pngHeader)

	photo, err := FileCamera{Path: path}.Capture(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(photo, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(photo, "data:image/png;base64,"))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
}

func TestFileCamera_MissingFile(t *testing.T) {
	_, err := FileCamera{Path: filepath.Join(t.TempDir(), "nope.png")}.Capture(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileCamera_RejectsNonImage(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("hello there"))

	_, err := FileCamera{Path: path}.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestFileCamera_RejectsLargeFile(t *testing.T) {
	path := writeFile(t, "big.png", append(pngHeader, make([]byte, 64)...))

	_, err := FileCamera{Path: path, MaxBytes: 16}.Capture(context.Background())
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFileCamera_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FileCamera{Path: "unused"}.Capture(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
