package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ICMM2025/icmm-server/internal/config"
	"github.com/ICMM2025/icmm-server/internal/logger"

	"github.com/google/uuid"
)

const defaultUploadTempDir = "./tmp/uploads"

// StagedFile 暂存到本地临时目录的上传文件
type StagedFile struct {
	Path        string
	Filename    string
	ContentType string
	Size        int64
}

// Read 读取文件内容
func (f *StagedFile) Read() ([]byte, error) {
	return os.ReadFile(f.Path)
}

// Remove 尽力删除临时文件
func (f *StagedFile) Remove() {
	if f == nil || f.Path == "" {
		return
	}
	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		logger.Warnw("upload_temp_cleanup_failed", "path", f.Path, "error", err)
	}
}

// RemoveStagedFiles 批量清理
func RemoveStagedFiles(files []*StagedFile) {
	for _, file := range files {
		file.Remove()
	}
}

// UploadService 上传文件校验与暂存
type UploadService struct {
	cfg config.UploadConfig
}

// NewUploadService 创建上传服务
func NewUploadService(cfg config.UploadConfig) *UploadService {
	return &UploadService{cfg: cfg}
}

// Stage 校验大小、扩展名与 MIME 后写入临时目录
func (s *UploadService) Stage(file *multipart.FileHeader) (*StagedFile, error) {
	if file == nil {
		return nil, ErrNoImageUploaded
	}
	if s.cfg.MaxSize > 0 && file.Size > s.cfg.MaxSize {
		return nil, fmt.Errorf("%w: file exceeds %d MB", ErrUploadInvalid, s.cfg.MaxSize/1024/1024)
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.AllowedExtensions) > 0 && (ext == "" || !isAllowedExtension(ext, s.cfg.AllowedExtensions)) {
		return nil, fmt.Errorf("%w: extension %s not allowed", ErrUploadInvalid, ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		return nil, err
	}
	contentType := http.DetectContentType(buffer[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, contentType) {
		return nil, fmt.Errorf("%w: type %s not allowed", ErrUploadInvalid, contentType)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	dir := strings.TrimSpace(s.cfg.TempDir)
	if dir == "" {
		dir = defaultUploadTempDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	target := filepath.Join(dir, uuid.NewString()+ext)
	dst, err := os.Create(target)
	if err != nil {
		return nil, err
	}
	size, copyErr := io.Copy(dst, src)
	closeErr := dst.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(target)
		if copyErr != nil {
			return nil, copyErr
		}
		return nil, closeErr
	}
	return &StagedFile{
		Path:        target,
		Filename:    filepath.Base(file.Filename),
		ContentType: contentType,
		Size:        size,
	}, nil
}

// StageAll 批量暂存，任一失败时清理已暂存文件
func (s *UploadService) StageAll(files []*multipart.FileHeader) ([]*StagedFile, error) {
	staged := make([]*StagedFile, 0, len(files))
	for _, file := range files {
		item, err := s.Stage(file)
		if err != nil {
			RemoveStagedFiles(staged)
			return nil, err
		}
		staged = append(staged, item)
	}
	return staged, nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, allowedExt := range allowed {
		normalized := strings.ToLower(strings.TrimSpace(allowedExt))
		if normalized == "" {
			continue
		}
		if !strings.HasPrefix(normalized, ".") {
			normalized = "." + normalized
		}
		if strings.EqualFold(ext, normalized) {
			return true
		}
	}
	return false
}

func containsFold(values []string, target string) bool {
	for _, value := range values {
		if strings.EqualFold(strings.TrimSpace(value), target) {
			return true
		}
	}
	return false
}
