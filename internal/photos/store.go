package photos

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// photoKeyLayout 照片文件名中的时间戳格式（历史格式：冒号去掉、空格换下划线）
const photoKeyLayout = "2006-01-02_150405"

// Store 站点照片的文件系统存储
// 键格式 {site_id}_{timestamp}.{ext}；无照片在日志里用 "N/A" 占位。
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore 创建照片存储（目录不存在时创建）
func NewStore(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save 写入照片并返回生成的文件名（即日志中的 photo_ref）
func (s *Store) Save(siteID string, at time.Time, ext string, data []byte) (string, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "jpg"
	}
	name := fmt.Sprintf("%s_%s.%s", sanitize(siteID), at.Format(photoKeyLayout), ext)

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("save photo %s: %w", name, err)
	}
	s.logger.Info("photo stored", zap.String("photo", name), zap.Int("bytes", len(data)))
	return name, nil
}

// List 返回全部照片文件名（按名称排序，后台浏览使用）
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Open 按文件名读取照片内容
func (s *Store) Open(name string) ([]byte, error) {
	// 拒绝路径穿越
	if name != filepath.Base(name) || name == "" || name == "." {
		return nil, fmt.Errorf("invalid photo name %q", name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("read photo %s: %w", name, err)
	}
	return data, nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, s)
}
