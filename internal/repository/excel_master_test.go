package repository_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/PNG-POM/field-dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeMasterFixture(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]string{
		{"Site ID", "RTO", "Region"},
		{"SITE01", "RTO-North", "Momase"},
		{"SITE02", "RTO-South", "Papua"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cell, v))
		}
	}
	require.NoError(t, f.SaveAs(path))
}

func TestExcelMasterDirectory_LookupHit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Master Data New.xlsx")
	writeMasterFixture(t, path)

	m := repository.NewExcelMasterDirectory(path)
	rto, region := m.Lookup(context.Background(), "SITE02")
	assert.Equal(t, "RTO-South", rto)
	assert.Equal(t, "Papua", region)
}

func TestExcelMasterDirectory_MissesAreEmptyStringsNeverErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Master Data New.xlsx")
	writeMasterFixture(t, path)
	m := repository.NewExcelMasterDirectory(path)

	// 未知站点
	rto, region := m.Lookup(context.Background(), "SITE99")
	assert.Empty(t, rto)
	assert.Empty(t, region)

	// 空 site_id
	rto, region = m.Lookup(context.Background(), "")
	assert.Empty(t, rto)
	assert.Empty(t, region)

	// 主数据文件缺失
	absent := repository.NewExcelMasterDirectory(filepath.Join(t.TempDir(), "nope.xlsx"))
	rto, region = absent.Lookup(context.Background(), "SITE01")
	assert.Empty(t, rto)
	assert.Empty(t, region)
}
