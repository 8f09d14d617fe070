package repository

import (
	"context"

	"github.com/PNG-POM/field-dashboard/internal/domain"
)

// VisitLog 访问日志存储
// 全量读 / 全量写：没有按行更新原语，调用方自己完成 load→修改→save。
// 本层不提供并发写保护（由 service 层串行化）。
type VisitLog interface {
	// Load 按文件顺序返回全部记录；数据不存在时返回空集
	// 介质存在但不可读（格式损坏）时返回 domain.ErrStorageUnavailable
	Load(ctx context.Context) ([]domain.VisitRecord, error)

	// Save 全量覆盖写入；对调用方而言是原子的（不出现半写状态）
	// 写失败（如文件被占用）返回 domain.ErrStorageUnavailable，内存数据不受影响
	Save(ctx context.Context, records []domain.VisitRecord) error
}

// MasterDirectory 站点主数据查询
// 未命中不是错误：site_id 为空、不存在、或主数据文件缺失时返回空串。
type MasterDirectory interface {
	Lookup(ctx context.Context, siteID string) (rto, region string)
}
