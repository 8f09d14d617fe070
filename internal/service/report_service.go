package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/domain"
	"github.com/PNG-POM/field-dashboard/internal/repository"

	"go.uber.org/zap"
)

// ReportService 访问日志的只读投影（后台页面使用）
type ReportService struct {
	visits repository.VisitLog
	loc    *time.Location
	logger *zap.Logger
}

// NewReportService 创建报表服务
func NewReportService(visits repository.VisitLog, loc *time.Location, logger *zap.Logger) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{visits: visits, loc: loc, logger: logger}
}

// VisitFilter 列表过滤条件（零值字段不过滤）
type VisitFilter struct {
	From       *time.Time
	To         *time.Time
	PersonName string // 子串匹配，大小写不敏感
	Region     string
	Status     domain.VisitStatus
}

func (f VisitFilter) matches(rec *domain.VisitRecord) bool {
	if f.From != nil && rec.OpenedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && rec.OpenedAt.After(*f.To) {
		return false
	}
	if f.PersonName != "" && !strings.Contains(strings.ToLower(rec.PersonName), strings.ToLower(f.PersonName)) {
		return false
	}
	if f.Region != "" && !strings.EqualFold(rec.Region, f.Region) {
		return false
	}
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	return true
}

// ListVisits 按过滤条件返回记录（保持文件顺序）
func (s *ReportService) ListVisits(ctx context.Context, filter VisitFilter) ([]domain.VisitRecord, error) {
	records, err := s.visits.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.VisitRecord, 0, len(records))
	for i := range records {
		if filter.matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// VisitSummary 聚合统计
type VisitSummary struct {
	Total            int            `json:"total"`
	Open             int            `json:"open"`
	Closed           int            `json:"closed"`
	ByRegion         map[string]int `json:"by_region"`
	AvgDwellSeconds  float64        `json:"avg_dwell_seconds"`
	LongestDwellTick string         `json:"longest_dwell_ticket,omitempty"`
}

// Summary 全量聚合
func (s *ReportService) Summary(ctx context.Context) (*VisitSummary, error) {
	records, err := s.visits.Load(ctx)
	if err != nil {
		return nil, err
	}

	summary := &VisitSummary{ByRegion: make(map[string]int)}
	var dwellSum time.Duration
	var longest time.Duration
	for i := range records {
		rec := &records[i]
		summary.Total++
		region := rec.Region
		if region == "" {
			region = "Unknown"
		}
		summary.ByRegion[region]++

		if rec.IsOpen() {
			summary.Open++
			continue
		}
		summary.Closed++
		d := rec.Dwell()
		dwellSum += d
		if d > longest {
			longest = d
			summary.LongestDwellTick = rec.TicketNo
		}
	}
	if summary.Closed > 0 {
		summary.AvgDwellSeconds = dwellSum.Seconds() / float64(summary.Closed)
	}
	return summary, nil
}

// ExportCSV 导出全量日志（后台"Download Full Log"）
// 列顺序与工作簿一致
func (s *ReportService) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := s.visits.Load(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(repository.VisitLogHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	const layout = "2006-01-02 15:04:05"
	for i := range records {
		rec := &records[i]
		closedAt := ""
		if rec.ClosedAt != nil {
			closedAt = rec.ClosedAt.In(s.loc).Format(layout)
		}
		row := []string{
			rec.Timestamp.In(s.loc).Format(layout),
			rec.PersonName,
			rec.Phone,
			rec.SiteID,
			rec.RTO,
			rec.Region,
			rec.TicketNo,
			rec.Remarks,
			coordString(rec.Latitude),
			coordString(rec.Longitude),
			rec.PhotoRef,
			rec.OpenedAt.In(s.loc).Format(layout),
			closedAt,
			string(rec.Status),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func coordString(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
