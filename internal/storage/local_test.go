package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ICMM2025/icmm-server/internal/config"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000000000000000")

func TestLocalUploadWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store := NewLocal(dir, "https://api.example/uploads/", "icmm")

	url, err := store.Upload(context.Background(), UploadInput{Data: pngHeader, Folder: "qr", PublicID: "qr_42"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://api.example/uploads/icmm/qr/qr_42.png" {
		t.Fatalf("unexpected url: %s", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "icmm", "qr", "qr_42.png")); err != nil {
		t.Fatalf("expected file written: %v", err)
	}
}

func TestLocalUploadSanitizesPublicID(t *testing.T) {
	store := NewLocal(t.TempDir(), "", "")
	url, err := store.Upload(context.Background(), UploadInput{Data: pngHeader, Folder: "slip", PublicID: "../../etc/passwd"})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "/uploads/slip/__/__/etc/passwd.png" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestLocalUploadEmptyInput(t *testing.T) {
	store := NewLocal(t.TempDir(), "", "")
	if _, err := store.Upload(context.Background(), UploadInput{}); !errors.Is(err, ErrUploadFailed) {
		t.Fatalf("expected ErrUploadFailed, got %v", err)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(config.StorageConfig{Driver: "ftp"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
	if _, err := New(config.StorageConfig{Driver: "cloudinary"}); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for missing url, got %v", err)
	}
}
