package app

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lucas/internal/types"
)

const maxAttachmentBytes = 8 << 20

var imageMimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadImagePayload reads an image file into the inline-data form the
// backend expects.
func LoadImagePayload(path string) (*types.ImagePayload, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("image path is required")
	}
	mimeType, ok := imageMimeTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("unsupported image type: %s", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxAttachmentBytes {
		return nil, fmt.Errorf("image exceeds %dMB limit", maxAttachmentBytes>>20)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &types.ImagePayload{
		DisplayName: filepath.Base(path),
		Data:        base64.StdEncoding.EncodeToString(raw),
		MimeType:    mimeType,
	}, nil
}
