package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/domain"
	"github.com/PNG-POM/field-dashboard/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords(loc *time.Location) []domain.VisitRecord {
	open1 := time.Date(2025, 1, 1, 9, 0, 0, 0, loc)
	open2 := time.Date(2025, 1, 2, 14, 15, 30, 0, loc)
	closed2 := time.Date(2025, 1, 2, 16, 45, 0, 0, loc)
	lat := -9.4438
	lon := 147.1803

	return []domain.VisitRecord{
		{
			Timestamp:  open1,
			PersonName: "Alice",
			Phone:      "70012345",
			SiteID:     "SITE01",
			RTO:        "RTO-North",
			Region:     "Momase",
			TicketNo:   "TT_SITE01_20250101_090000",
			Remarks:    "generator check",
			Latitude:   &lat,
			Longitude:  &lon,
			PhotoRef:   "SITE01_2025-01-01_090000.jpg",
			OpenedAt:   open1,
			Status:     domain.VisitOpen,
		},
		{
			Timestamp:  open2,
			PersonName: "Bob",
			Phone:      "",
			SiteID:     "SITE02",
			RTO:        "RTO-South",
			Region:     "Papua",
			TicketNo:   "TT_SITE02_20250102_141530",
			Remarks:    "",
			PhotoRef:   domain.PhotoNone,
			OpenedAt:   open2,
			ClosedAt:   &closed2,
			Status:     domain.VisitClosed,
		},
	}
}

func TestExcelVisitLog_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Visit_Log.xlsx")
	log := repository.NewExcelVisitLog(path, time.UTC)

	want := testRecords(time.UTC)
	require.NoError(t, log.Save(context.Background(), want))

	got, err := log.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want, got)

	// save(load()) 必须是无损的
	require.NoError(t, log.Save(context.Background(), got))
	again, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestExcelVisitLog_MissingFileIsEmptyLog(t *testing.T) {
	log := repository.NewExcelVisitLog(filepath.Join(t.TempDir(), "nope.xlsx"), time.UTC)

	records, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExcelVisitLog_CorruptFileIsStorageUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Visit_Log.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	log := repository.NewExcelVisitLog(path, time.UTC)
	_, err := log.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrStorageUnavailable)
}

func TestExcelVisitLog_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Visit_Log.xlsx")
	log := repository.NewExcelVisitLog(path, time.UTC)

	records := testRecords(time.UTC)
	require.NoError(t, log.Save(context.Background(), records))
	require.NoError(t, log.Save(context.Background(), records[:1]))

	got, err := log.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// 临时文件不能残留
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestExcelVisitLog_EmptyPhotoBecomesSentinel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Visit_Log.xlsx")
	log := repository.NewExcelVisitLog(path, time.UTC)

	rec := testRecords(time.UTC)[0]
	rec.PhotoRef = ""
	require.NoError(t, log.Save(context.Background(), []domain.VisitRecord{rec}))

	got, err := log.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.PhotoNone, got[0].PhotoRef)
}
