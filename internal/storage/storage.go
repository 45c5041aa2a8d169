package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"
)

var (
	ErrUploadFailed  = errors.New("storage upload failed")
	ErrConfigInvalid = errors.New("storage config invalid")
)

// UploadInput 上传参数；Data 与 FilePath 二选一
type UploadInput struct {
	Data        []byte
	FilePath    string
	ContentType string
	Folder      string
	PublicID    string
	MaxWidth    int
	MaxHeight   int
}

// Uploader 对象存储，返回可公开访问的地址
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (string, error)
}

// New 根据配置创建存储实现
func New(cfg config.StorageConfig) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "local":
		return NewLocal(cfg.LocalDir, cfg.PublicBaseURL, cfg.Folder), nil
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryURL, cfg.Folder)
	default:
		return nil, fmt.Errorf("%w: unsupported driver %s", ErrConfigInvalid, cfg.Driver)
	}
}

func joinFolder(root, folder string) string {
	root = strings.Trim(strings.TrimSpace(root), "/")
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	switch {
	case root == "":
		return folder
	case folder == "":
		return root
	default:
		return root + "/" + folder
	}
}
