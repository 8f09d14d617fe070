package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/domain"
	"github.com/PNG-POM/field-dashboard/internal/metrics"
	"github.com/PNG-POM/field-dashboard/internal/repository"

	"go.uber.org/zap"
)

// VisitService 站点访问会话生命周期管理（核心）
// 每个 (site_id, person) 键同一时刻最多一条 OPEN 记录：
// 登入新建 OPEN 记录，登出把对应 OPEN 记录置为 CLOSED 并计算停留时长。
// 两个操作都是完整的 load→修改→save 周期，由内部互斥锁串行化
// （存储层本身不提供并发写保护）。
type VisitService struct {
	visits repository.VisitLog
	master repository.MasterDirectory
	loc    *time.Location
	logger *zap.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewVisitService 创建会话服务
// loc: 时间戳/工单号使用的统一时区
func NewVisitService(visits repository.VisitLog, master repository.MasterDirectory, loc *time.Location, logger *zap.Logger) *VisitService {
	if loc == nil {
		loc = time.Local
	}
	return &VisitService{
		visits: visits,
		master: master,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock 替换时间源（仅测试使用）
func (s *VisitService) SetClock(now func() time.Time) {
	s.now = now
}

// BeginVisitRequest 登入请求
type BeginVisitRequest struct {
	SiteID     string
	PersonName string
	Phone      string
	Remarks    string
	Latitude   *float64
	Longitude  *float64
	PhotoRef   string
}

// EndVisitRequest 登出请求
type EndVisitRequest struct {
	SiteID     string
	PersonName string
	Remarks    string // 非空时覆盖登入备注（last-writer-wins）
	PhotoRef   string // 非空时补充/替换照片
}

// BeginVisit 登入：为 (site, person) 新建一条 OPEN 记录
// 已存在 OPEN 会话时返回 domain.ErrDuplicateOpenSession，不做任何修改。
func (s *VisitService) BeginVisit(ctx context.Context, req BeginVisitRequest) (*domain.VisitRecord, error) {
	if req.SiteID == "" {
		return nil, fmt.Errorf("site_id is required")
	}
	if req.PersonName == "" {
		return nil, fmt.Errorf("person name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.visits.Load(ctx)
	if err != nil {
		metrics.StorageFailures.Inc()
		return nil, err
	}

	// UI 层应当已经路由到登出，这里仍然重新校验
	for i := range records {
		if records[i].IsOpen() && records[i].Matches(req.SiteID, req.PersonName) {
			metrics.SessionRejections.WithLabelValues("duplicate_open").Inc()
			return nil, fmt.Errorf("%w: %s at %s (ticket %s)",
				domain.ErrDuplicateOpenSession, req.PersonName, req.SiteID, records[i].TicketNo)
		}
	}

	now := s.now().In(s.loc)
	rto, region := s.master.Lookup(ctx, req.SiteID)

	photoRef := req.PhotoRef
	if photoRef == "" {
		photoRef = domain.PhotoNone
	}

	rec := domain.VisitRecord{
		Timestamp:  now,
		PersonName: req.PersonName,
		Phone:      req.Phone,
		SiteID:     req.SiteID,
		RTO:        rto,
		Region:     region,
		TicketNo:   TicketNumber(req.SiteID, now),
		Remarks:    req.Remarks,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		PhotoRef:   photoRef,
		OpenedAt:   now,
		Status:     domain.VisitOpen,
	}

	records = append(records, rec)
	if err := s.visits.Save(ctx, records); err != nil {
		metrics.StorageFailures.Inc()
		return nil, err
	}

	metrics.VisitsOpened.Inc()
	s.logger.Info("visit opened",
		zap.String("site_id", rec.SiteID),
		zap.String("person", rec.PersonName),
		zap.String("ticket", rec.TicketNo),
		zap.String("region", rec.Region),
	)
	return &rec, nil
}

// EndVisit 登出：关闭 (site, person) 的 OPEN 记录并返回停留时长
// 找不到 OPEN 会话时返回 domain.ErrNoOpenSession，不做任何修改。
func (s *VisitService) EndVisit(ctx context.Context, req EndVisitRequest) (*domain.VisitRecord, time.Duration, error) {
	if req.SiteID == "" {
		return nil, 0, fmt.Errorf("site_id is required")
	}
	if req.PersonName == "" {
		return nil, 0, fmt.Errorf("person name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.visits.Load(ctx)
	if err != nil {
		metrics.StorageFailures.Inc()
		return nil, 0, err
	}

	// 不变量下最多一条；万一出现多条，确定性地选 OpenedAt 最晚的那条，
	// 其余的只记告警，不作为致命错误
	target := -1
	openCount := 0
	for i := range records {
		if records[i].IsOpen() && records[i].Matches(req.SiteID, req.PersonName) {
			openCount++
			if target < 0 || !records[i].OpenedAt.Before(records[target].OpenedAt) {
				target = i
			}
		}
	}
	if target < 0 {
		metrics.SessionRejections.WithLabelValues("no_open").Inc()
		return nil, 0, fmt.Errorf("%w: %s at %s", domain.ErrNoOpenSession, req.PersonName, req.SiteID)
	}
	if openCount > 1 {
		s.logger.Warn("data integrity: multiple open sessions for one key, closing most recent",
			zap.String("site_id", req.SiteID),
			zap.String("person", req.PersonName),
			zap.Int("open_count", openCount),
		)
	}

	rec := &records[target]
	closedAt := s.now().In(s.loc)
	duration := closedAt.Sub(rec.OpenedAt)
	if duration < 0 {
		// 时钟回拨：截断为 0 并继续关闭，中途放弃比错误时长更糟
		s.logger.Warn("clock skew: close time before open time, clamping duration to zero",
			zap.String("ticket", rec.TicketNo),
			zap.Time("opened_at", rec.OpenedAt),
			zap.Time("closed_at", closedAt),
		)
		duration = 0
		closedAt = rec.OpenedAt
	}

	rec.ClosedAt = &closedAt
	rec.Status = domain.VisitClosed
	if req.Remarks != "" {
		rec.Remarks = req.Remarks
	}
	if req.PhotoRef != "" {
		rec.PhotoRef = req.PhotoRef
	}

	if err := s.visits.Save(ctx, records); err != nil {
		metrics.StorageFailures.Inc()
		return nil, 0, err
	}

	metrics.VisitsClosed.Inc()
	metrics.DwellSeconds.Observe(duration.Seconds())
	s.logger.Info("visit closed",
		zap.String("site_id", rec.SiteID),
		zap.String("person", rec.PersonName),
		zap.String("ticket", rec.TicketNo),
		zap.Duration("dwell", duration),
	)

	out := *rec
	return &out, duration, nil
}

// PreviewMaster 登入前的主数据预览（RTO/Region + 预生成的工单号）
// 与原表单展示一致：工单号按当前时间预览，真正的工单号在登入时生成。
func (s *VisitService) PreviewMaster(ctx context.Context, siteID string) domain.MasterEntry {
	rto, region := s.master.Lookup(ctx, siteID)
	return domain.MasterEntry{SiteID: siteID, RTO: rto, Region: region}
}

// Now 当前统一时区时间（handler 生成照片键等处复用同一时间源）
func (s *VisitService) Now() time.Time {
	return s.now().In(s.loc)
}
