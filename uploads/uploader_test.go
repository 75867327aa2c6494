package uploads

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chat-direct/errors"

	"github.com/stretchr/testify/require"
)

// Smallest valid PNG: 8-byte signature is enough for content sniffing.
var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestDiskUploader_Upload_PNG(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	uploader, err := NewDiskUploader(dir, "http://localhost:8080", slog.Default())
	req.NoError(err)

	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)

	url, err := uploader.Upload(inline)
	req.NoError(err)
	req.True(strings.HasPrefix(url, "http://localhost:8080/uploads/"))
	req.True(strings.HasSuffix(url, ".png"))

	// The file really exists on disk with the decoded bytes
	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, name))
	req.NoError(err)
	req.Equal(pngBytes, data)
}

func TestDiskUploader_Upload_Without_Data_URL_Prefix(t *testing.T) {
	req := require.New(t)
	uploader, err := NewDiskUploader(t.TempDir(), "http://localhost:8080/", slog.Default())
	req.NoError(err)

	url, err := uploader.Upload(base64.StdEncoding.EncodeToString(pngBytes))
	req.NoError(err)
	req.True(strings.HasPrefix(url, "http://localhost:8080/uploads/"))
}

func TestDiskUploader_Rejects_Invalid_Base64(t *testing.T) {
	req := require.New(t)
	uploader, err := NewDiskUploader(t.TempDir(), "", slog.Default())
	req.NoError(err)

	_, err = uploader.Upload("not!base64!!")
	req.ErrorIs(err, errors.ErrUploadFailed)
}

func TestDiskUploader_Rejects_Oversized_Payload(t *testing.T) {
	req := require.New(t)
	uploader, err := NewDiskUploader(t.TempDir(), "", slog.Default())
	req.NoError(err)

	// Just past the cap once decoded; rejected before any decoding happens
	oversized := strings.Repeat("A", base64.StdEncoding.EncodedLen(MaxUploadBytes+1))

	_, err = uploader.Upload(oversized)
	req.ErrorIs(err, errors.ErrUploadFailed)
}

func TestDiskUploader_Rejects_Non_Image(t *testing.T) {
	req := require.New(t)
	uploader, err := NewDiskUploader(t.TempDir(), "", slog.Default())
	req.NoError(err)

	// The data-URL claims png but the bytes are plain text
	inline := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("just some text"))

	_, err = uploader.Upload(inline)
	req.ErrorIs(err, errors.ErrUploadFailed)
}
