package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/khxzi/passport/internal/config"

	"github.com/google/uuid"
)

// UploadService 附件上传服务
// 保存的文件名为 UUID，申请记录只存文件名，访问走 /uploads 静态路由
type UploadService struct {
	cfg *config.Config
}

// NewUploadService 创建附件上传服务实例
func NewUploadService(cfg *config.Config) *UploadService {
	return &UploadService{cfg: cfg}
}

// SaveFile 校验并保存上传的附件，返回存储文件名
func (s *UploadService) SaveFile(file *multipart.FileHeader) (string, error) {
	if file.Size > s.cfg.Upload.MaxSize {
		return "", fmt.Errorf("file exceeds size limit (%d MB max)", s.cfg.Upload.MaxSize/1024/1024)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if len(s.cfg.Upload.AllowedExtensions) > 0 {
		if ext == "" || !isAllowedExtension(ext, s.cfg.Upload.AllowedExtensions) {
			return "", fmt.Errorf("file extension not allowed: %s", ext)
		}
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// 读取文件头识别 MIME 类型
	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}
	contentType := http.DetectContentType(buffer)
	if len(s.cfg.Upload.AllowedTypes) > 0 {
		allowed := false
		for _, t := range s.cfg.Upload.AllowedTypes {
			if strings.EqualFold(contentType, t) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", fmt.Errorf("file type not allowed: %s", contentType)
		}
	}

	dir := s.cfg.Upload.Dir
	if strings.TrimSpace(dir) == "" {
		dir = "./uploads"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	filename := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return filename, nil
}

func isAllowedExtension(ext string, allowed []string) bool {
	for _, a := range allowed {
		candidate := strings.ToLower(strings.TrimSpace(a))
		if candidate == "" {
			continue
		}
		if !strings.HasPrefix(candidate, ".") {
			candidate = "." + candidate
		}
		if candidate == ext {
			return true
		}
	}
	return false
}
