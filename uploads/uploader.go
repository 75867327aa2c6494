// Package uploads turns inline image payloads into durable, retrievable
// URLs. A send with an image goes through here before anything is persisted:
// an upload failure aborts the whole send.
package uploads

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"chat-direct/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Uploader interface {
	Upload(inline string) (string, error)
}

// MaxUploadBytes caps the decoded image size. The payload arrives fully
// inline in the request body, so the bound is checked on the encoded form
// before any decoding allocates.
const MaxUploadBytes = 8 << 20

// DiskUploader stores decoded images under a local directory and serves them
// back through the HTTP server's static route.
type DiskUploader struct {
	dir     string
	baseURL string
	log     *slog.Logger
}

func NewDiskUploader(dir, baseURL string, log *slog.Logger) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	return &DiskUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/"), log: log}, nil
}

// Upload accepts a base64 payload, with or without a data-URL prefix
// ("data:image/png;base64,..."), sniffs the real content type and writes the
// bytes to disk. Only image payloads are accepted. The returned URL is
// durable for the lifetime of the upload directory.
func (u *DiskUploader) Upload(inline string) (string, error) {
	if idx := strings.Index(inline, "base64,"); idx >= 0 {
		inline = inline[idx+len("base64,"):]
	}

	if base64.StdEncoding.DecodedLen(len(inline)) > MaxUploadBytes {
		return "", fmt.Errorf("%w: payload exceeds %d bytes", errors.ErrUploadFailed, MaxUploadBytes)
	}

	data, err := base64.StdEncoding.DecodeString(inline)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUploadFailed, err)
	}

	// The declared type in a data URL is client-controlled; trust the bytes.
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", fmt.Errorf("%w: unsupported content type %s", errors.ErrUploadFailed, mtype.String())
	}

	name := uuid.New().String() + mtype.Extension()
	path := filepath.Join(u.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrUploadFailed, err)
	}

	u.log.Debug("Stored uploaded image", "file", name, "mime", mtype.String(), "bytes", len(data))
	return u.baseURL + "/uploads/" + name, nil
}
