package storage

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafePublicID = regexp.MustCompile(`[^A-Za-z0-9_\-/]`)

var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Local 本地磁盘存储，由 HTTP 服务以静态目录对外提供
type Local struct {
	dir     string
	baseURL string
	root    string
}

// NewLocal 创建本地存储
func NewLocal(dir, baseURL, root string) *Local {
	if strings.TrimSpace(dir) == "" {
		dir = "./uploads"
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "/uploads"
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), root: root}
}

// Dir 存储根目录
func (l *Local) Dir() string {
	return l.dir
}

// Upload 写入文件；不做缩放
func (l *Local) Upload(ctx context.Context, input UploadInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	data := input.Data
	if len(data) == 0 && input.FilePath != "" {
		content, err := os.ReadFile(input.FilePath)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		data = content
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty input", ErrUploadFailed)
	}

	contentType := input.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext := extByContentType[strings.ToLower(contentType)]
	if ext == "" {
		ext = ".bin"
	}

	publicID := strings.Trim(unsafePublicID.ReplaceAllString(input.PublicID, "_"), "/")
	if publicID == "" {
		publicID = uuid.NewString()
	}
	rel := path.Join(joinFolder(l.root, input.Folder), publicID+ext)
	if strings.Contains(rel, "..") {
		return "", fmt.Errorf("%w: invalid public id", ErrUploadFailed)
	}

	target := filepath.Join(l.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return l.baseURL + "/" + rel, nil
}
