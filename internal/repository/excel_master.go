package repository

import (
	"context"
	"os"

	"github.com/xuri/excelize/v2"
)

// ExcelMasterDirectory Master Data 工作簿查询
// 每次 Lookup 重新打开文件读取（主数据由人工维护，改动后立即生效，不做缓存）。
// 未命中永远不是错误：文件缺失、站点不存在、site_id 为空都返回空串。
type ExcelMasterDirectory struct {
	path string
}

var _ MasterDirectory = (*ExcelMasterDirectory)(nil)

// NewExcelMasterDirectory 创建主数据查询
func NewExcelMasterDirectory(path string) *ExcelMasterDirectory {
	return &ExcelMasterDirectory{path: path}
}

// Lookup 根据 site_id 返回 (rto, region)
func (m *ExcelMasterDirectory) Lookup(ctx context.Context, siteID string) (string, string) {
	if siteID == "" {
		return "", ""
	}
	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		return "", ""
	}

	f, err := excelize.OpenFile(m.path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return "", ""
	}
	rows, err := f.GetRows(sheetName)
	if err != nil || len(rows) < 2 {
		return "", ""
	}

	headerMap := make(map[string]int)
	for i, h := range rows[0] {
		headerMap[h] = i
	}
	siteCol, ok := headerMap["Site ID"]
	if !ok {
		return "", ""
	}

	cell := func(row []string, name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		if siteCol < len(row) && row[siteCol] == siteID {
			return cell(row, "RTO"), cell(row, "Region")
		}
	}
	return "", ""
}
