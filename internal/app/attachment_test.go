package app

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadImagePayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.PNG")
	raw := []byte{0x89, 'P', 'N', 'G'}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	payload, err := LoadImagePayload(path)
	if err != nil {
		t.Fatalf("LoadImagePayload: %v", err)
	}
	if payload.DisplayName != "chart.PNG" {
		t.Fatalf("display name = %q", payload.DisplayName)
	}
	if payload.MimeType != "image/png" {
		t.Fatalf("mime type = %q", payload.MimeType)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil || string(decoded) != string(raw) {
		t.Fatalf("payload not base64 of source: %v", err)
	}
}

func TestLoadImagePayloadRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadImagePayload(path); err == nil {
		t.Fatalf("txt accepted as image")
	}
	if _, err := LoadImagePayload(""); err == nil {
		t.Fatalf("empty path accepted")
	}
	if _, err := LoadImagePayload(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
