package service

import (
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/constants"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/google/uuid"
)

var uploadScenes = map[string]struct{}{
	constants.UploadSceneProduct: {},
	constants.UploadSceneBanner:  {},
	constants.UploadSceneCommon:  {},
}

// UploadService 图片上传服务
type UploadService struct {
	cfg     config.UploadConfig
	rootDir string
	now     func() time.Time
}

// NewUploadService 创建上传服务，文件写入 rootDir/uploads 下
func NewUploadService(cfg config.UploadConfig, rootDir string) *UploadService {
	return &UploadService{cfg: cfg, rootDir: rootDir, now: time.Now}
}

// SaveFile 保存 multipart 上传文件，返回可访问的相对路径
func (s *UploadService) SaveFile(file *multipart.FileHeader, scene string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return s.Save(file.Filename, file.Size, src, scene)
}

// Save 校验并写入文件
func (s *UploadService) Save(filename string, size int64, src io.ReadSeeker, scene string) (string, error) {
	if s.cfg.MaxSize > 0 && size > s.cfg.MaxSize {
		return "", ErrUploadTooLarge
	}
	normalizedScene, err := normalizeUploadScene(scene)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if len(s.cfg.AllowedExtensions) > 0 && !containsFold(s.cfg.AllowedExtensions, ext) {
		return "", ErrUploadInvalidType
	}

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(head[:n])
	if len(s.cfg.AllowedTypes) > 0 && !containsFold(s.cfg.AllowedTypes, contentType) {
		return "", ErrUploadInvalidType
	}
	if err := s.checkDimensions(src, contentType); err != nil {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	now := s.now()
	relDir := path.Join("uploads", normalizedScene, now.Format("2006"), now.Format("01"))
	name := uuid.NewString() + ext
	target := filepath.Join(s.rootDir, filepath.FromSlash(relDir), name)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return "/" + path.Join(relDir, name), nil
}

// webp 由标准库无法解析尺寸，仅对 gif/jpeg/png 校验宽高
func (s *UploadService) checkDimensions(src io.ReadSeeker, contentType string) error {
	if s.cfg.MaxWidth <= 0 && s.cfg.MaxHeight <= 0 {
		return nil
	}
	switch contentType {
	case "image/gif", "image/jpeg", "image/png":
	default:
		return nil
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return err
	}
	imgCfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return ErrUploadInvalidType
	}
	if (s.cfg.MaxWidth > 0 && imgCfg.Width > s.cfg.MaxWidth) || (s.cfg.MaxHeight > 0 && imgCfg.Height > s.cfg.MaxHeight) {
		return ErrUploadTooLarge
	}
	return nil
}

func normalizeUploadScene(raw string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return constants.UploadSceneCommon, nil
	}
	if _, ok := uploadScenes[value]; !ok {
		return "", ErrUploadInvalidScene
	}
	return value, nil
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
