package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/domain"

	"github.com/xuri/excelize/v2"
)

// VisitLogSheet 访问日志工作表名
const VisitLogSheet = "Visit Log"

// timeLayout 与历史数据（pandas 写出的格式）保持一致
const timeLayout = "2006-01-02 15:04:05"

// VisitLogHeader 访问日志表头（列顺序固定，与历史 Visit_Log.xlsx 对齐）
var VisitLogHeader = []string{
	"Timestamp",
	"FE/Contractor Name",
	"Phone Number",
	"Site ID",
	"RTO",
	"Region",
	"TT Number",
	"Remarks",
	"Latitude",
	"Longitude",
	"Photo",
	"Site Visit Time",
	"Activity Complete Time",
	"Status",
}

// ExcelVisitLog Excel 工作簿实现的访问日志存储
// 整簿读入内存，保存时全量重写（先写临时文件再 rename，避免半写可见）。
type ExcelVisitLog struct {
	path string
	loc  *time.Location
}

// 确保实现了接口
var _ VisitLog = (*ExcelVisitLog)(nil)

// NewExcelVisitLog 创建 Excel 访问日志存储
// loc: 解析/写出时间戳使用的统一时区
func NewExcelVisitLog(path string, loc *time.Location) *ExcelVisitLog {
	if loc == nil {
		loc = time.Local
	}
	return &ExcelVisitLog{path: path, loc: loc}
}

// Load 按文件顺序返回全部记录；文件不存在视为空日志
func (s *ExcelVisitLog) Load(ctx context.Context) ([]domain.VisitRecord, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return []domain.VisitRecord{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrStorageUnavailable, s.path, err)
	}
	defer f.Close()

	// 读第一个工作表（历史文件的表名不固定）
	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("%w: %s has no sheets", domain.ErrStorageUnavailable, s.path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: read rows: %v", domain.ErrStorageUnavailable, err)
	}
	if len(rows) == 0 {
		return []domain.VisitRecord{}, nil
	}

	// 按表头名定位列（列缺失视为格式损坏）
	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[h] = i
	}
	for _, h := range []string{"Timestamp", "FE/Contractor Name", "Site ID", "TT Number"} {
		if _, ok := headerMap[h]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", domain.ErrStorageUnavailable, h)
		}
	}

	cell := func(row []string, name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	records := make([]domain.VisitRecord, 0, len(rows)-1)
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if len(row) == 0 {
			continue
		}

		var rec domain.VisitRecord
		rec.PersonName = cell(row, "FE/Contractor Name")
		rec.Phone = cell(row, "Phone Number")
		rec.SiteID = cell(row, "Site ID")
		rec.RTO = cell(row, "RTO")
		rec.Region = cell(row, "Region")
		rec.TicketNo = cell(row, "TT Number")
		rec.Remarks = cell(row, "Remarks")
		rec.PhotoRef = cell(row, "Photo")
		if rec.PhotoRef == "" {
			rec.PhotoRef = domain.PhotoNone
		}

		rec.Timestamp = s.parseTime(cell(row, "Timestamp"))
		rec.OpenedAt = s.parseTime(cell(row, "Site Visit Time"))
		if rec.OpenedAt.IsZero() {
			// 单步旧数据：没有单独的 Site Visit Time 列值
			rec.OpenedAt = rec.Timestamp
		}
		if closed := s.parseTime(cell(row, "Activity Complete Time")); !closed.IsZero() {
			c := closed
			rec.ClosedAt = &c
		}

		rec.Latitude = parseCoord(cell(row, "Latitude"))
		rec.Longitude = parseCoord(cell(row, "Longitude"))

		switch cell(row, "Status") {
		case string(domain.VisitClosed):
			rec.Status = domain.VisitClosed
		case string(domain.VisitOpen):
			rec.Status = domain.VisitOpen
		default:
			// 旧数据没有 Status 列：有完成时间即视为 CLOSED
			if rec.ClosedAt != nil {
				rec.Status = domain.VisitClosed
			} else {
				rec.Status = domain.VisitOpen
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// Save 全量重写工作簿；通过临时文件 + rename 保证不出现半写文件
func (s *ExcelVisitLog) Save(ctx context.Context, records []domain.VisitRecord) error {
	f := excelize.NewFile()

	index, err := f.NewSheet(VisitLogSheet)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: create sheet: %v", domain.ErrStorageUnavailable, err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: create header style: %v", domain.ErrStorageUnavailable, err)
	}

	for col, header := range VisitLogHeader {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		if err := f.SetCellValue(VisitLogSheet, cellName, header); err != nil {
			f.Close()
			return fmt.Errorf("%w: set header cell %s: %v", domain.ErrStorageUnavailable, cellName, err)
		}
		if err := f.SetCellStyle(VisitLogSheet, cellName, cellName, headerStyle); err != nil {
			f.Close()
			return fmt.Errorf("%w: set header style: %v", domain.ErrStorageUnavailable, err)
		}
	}

	for rowIdx, rec := range records {
		row := rowIdx + 2 // 第1行是表头
		values := []string{
			s.formatTime(rec.Timestamp),
			rec.PersonName,
			rec.Phone,
			rec.SiteID,
			rec.RTO,
			rec.Region,
			rec.TicketNo,
			rec.Remarks,
			formatCoord(rec.Latitude),
			formatCoord(rec.Longitude),
			rec.PhotoRef,
			s.formatTime(rec.OpenedAt),
			s.formatTimePtr(rec.ClosedAt),
			string(rec.Status),
		}
		for col, v := range values {
			cellName, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
			}
			if v == "" {
				continue
			}
			if err := f.SetCellValue(VisitLogSheet, cellName, v); err != nil {
				f.Close()
				return fmt.Errorf("%w: set cell %s: %v", domain.ErrStorageUnavailable, cellName, err)
			}
		}
	}

	tmp := s.path + ".tmp"
	if err := f.SaveAs(tmp); err != nil {
		f.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrStorageUnavailable, tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close workbook: %v", domain.ErrStorageUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", domain.ErrStorageUnavailable, s.path, err)
	}
	return nil
}

// Path 当前工作簿路径（备份上传使用）
func (s *ExcelVisitLog) Path() string {
	return filepath.Clean(s.path)
}

func (s *ExcelVisitLog) parseTime(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	t, err := time.ParseInLocation(timeLayout, v, s.loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *ExcelVisitLog) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(s.loc).Format(timeLayout)
}

func (s *ExcelVisitLog) formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return s.formatTime(*t)
}

func parseCoord(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
