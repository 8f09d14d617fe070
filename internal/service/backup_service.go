package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/metrics"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BackupService 定时把访问日志文件整体上传到远端对象存储
// 只读取已持久化的文件，从不修改会话数据；与会话逻辑完全独立。
type BackupService struct {
	httpClient *resty.Client
	filePath   string
	interval   time.Duration
	logger     *zap.Logger
}

// NewBackupService 创建备份服务
// uploadURL: 远端上传地址（PUT，文件名放在 X-File-Name 头）
// token: Bearer token，可为空
func NewBackupService(uploadURL, token, filePath string, interval time.Duration, logger *zap.Logger) *BackupService {
	client := resty.New().
		SetBaseURL(uploadURL).
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second)
	if token != "" {
		client.SetAuthToken(token)
	}

	return &BackupService{
		httpClient: client,
		filePath:   filePath,
		interval:   interval,
		logger:     logger,
	}
}

// Run 周期性上传，ctx 取消后退出（启动时先上传一次）
func (s *BackupService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.uploadOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("backup service stopped")
			return
		case <-ticker.C:
			s.uploadOnce(ctx)
		}
	}
}

// UploadOnce 手动触发一次上传（测试和运维脚本使用）
func (s *BackupService) UploadOnce(ctx context.Context) error {
	return s.upload(ctx)
}

func (s *BackupService) uploadOnce(ctx context.Context) {
	if err := s.upload(ctx); err != nil {
		s.logger.Error("backup upload failed", zap.Error(err))
	}
}

func (s *BackupService) upload(ctx context.Context) error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// 还没有任何登入记录，无事可备份
			metrics.BackupRuns.WithLabelValues("skipped").Inc()
			return nil
		}
		metrics.BackupRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("read %s: %w", s.filePath, err)
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetHeader("X-File-Name", filepath.Base(s.filePath)).
		SetBody(data).
		Put("")
	if err != nil {
		metrics.BackupRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("upload backup: %w", err)
	}
	if resp.IsError() {
		metrics.BackupRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("upload backup: remote returned %d", resp.StatusCode())
	}

	metrics.BackupRuns.WithLabelValues("ok").Inc()
	s.logger.Info("visit log backed up",
		zap.String("file", filepath.Base(s.filePath)),
		zap.Int("bytes", len(data)),
	)
	return nil
}
