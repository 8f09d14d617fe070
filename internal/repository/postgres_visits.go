package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/PNG-POM/field-dashboard/internal/domain"
)

// PostgresVisitLog 访问日志存储的事务型实现（site_visits 表）
// 语义与 Excel 实现保持一致：Load 全量读（按写入顺序），Save 在单个事务内
// 全量重写，事务回滚即等价于"无半写可见"。
//
// 对应表结构：
//
//	CREATE TABLE site_visits (
//	    row_order   INT PRIMARY KEY,
//	    ts          TIMESTAMPTZ NOT NULL,
//	    person_name TEXT NOT NULL,
//	    phone       TEXT NOT NULL DEFAULT '',
//	    site_id     TEXT NOT NULL,
//	    rto         TEXT NOT NULL DEFAULT '',
//	    region      TEXT NOT NULL DEFAULT '',
//	    ticket_no   TEXT NOT NULL,
//	    remarks     TEXT NOT NULL DEFAULT '',
//	    latitude    DOUBLE PRECISION,
//	    longitude   DOUBLE PRECISION,
//	    photo_ref   TEXT NOT NULL DEFAULT 'N/A',
//	    opened_at   TIMESTAMPTZ NOT NULL,
//	    closed_at   TIMESTAMPTZ,
//	    status      VARCHAR(10) NOT NULL
//	);
type PostgresVisitLog struct {
	db *sql.DB
}

var _ VisitLog = (*PostgresVisitLog)(nil)

// NewPostgresVisitLog 创建 Postgres 访问日志存储
func NewPostgresVisitLog(db *sql.DB) *PostgresVisitLog {
	return &PostgresVisitLog{db: db}
}

// Load 按 row_order 返回全部记录
func (s *PostgresVisitLog) Load(ctx context.Context) ([]domain.VisitRecord, error) {
	query := `
		SELECT
			ts, person_name, phone, site_id, rto, region,
			ticket_no, remarks, latitude, longitude, photo_ref,
			opened_at, closed_at, status
		FROM site_visits
		ORDER BY row_order
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query site_visits: %v", domain.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	records := make([]domain.VisitRecord, 0)
	for rows.Next() {
		var rec domain.VisitRecord
		var lat, lon sql.NullFloat64
		var closedAt sql.NullTime
		var status string

		if err := rows.Scan(
			&rec.Timestamp,
			&rec.PersonName,
			&rec.Phone,
			&rec.SiteID,
			&rec.RTO,
			&rec.Region,
			&rec.TicketNo,
			&rec.Remarks,
			&lat,
			&lon,
			&rec.PhotoRef,
			&rec.OpenedAt,
			&closedAt,
			&status,
		); err != nil {
			return nil, fmt.Errorf("%w: scan site_visits: %v", domain.ErrStorageUnavailable, err)
		}

		if lat.Valid {
			v := lat.Float64
			rec.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rec.Longitude = &v
		}
		if closedAt.Valid {
			t := closedAt.Time
			rec.ClosedAt = &t
		}
		rec.Status = domain.VisitStatus(status)
		if rec.PhotoRef == "" {
			rec.PhotoRef = domain.PhotoNone
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate site_visits: %v", domain.ErrStorageUnavailable, err)
	}

	return records, nil
}

// Save 在单个事务内全量重写 site_visits
func (s *PostgresVisitLog) Save(ctx context.Context, records []domain.VisitRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", domain.ErrStorageUnavailable, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM site_visits`); err != nil {
		return fmt.Errorf("%w: clear site_visits: %v", domain.ErrStorageUnavailable, err)
	}

	insert := `
		INSERT INTO site_visits (
			row_order, ts, person_name, phone, site_id, rto, region,
			ticket_no, remarks, latitude, longitude, photo_ref,
			opened_at, closed_at, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for i, rec := range records {
		var lat, lon sql.NullFloat64
		if rec.Latitude != nil {
			lat = sql.NullFloat64{Float64: *rec.Latitude, Valid: true}
		}
		if rec.Longitude != nil {
			lon = sql.NullFloat64{Float64: *rec.Longitude, Valid: true}
		}
		var closedAt sql.NullTime
		if rec.ClosedAt != nil {
			closedAt = sql.NullTime{Time: *rec.ClosedAt, Valid: true}
		}

		if _, err := tx.ExecContext(ctx, insert,
			i,
			rec.Timestamp,
			rec.PersonName,
			rec.Phone,
			rec.SiteID,
			rec.RTO,
			rec.Region,
			rec.TicketNo,
			rec.Remarks,
			lat,
			lon,
			rec.PhotoRef,
			rec.OpenedAt,
			closedAt,
			string(rec.Status),
		); err != nil {
			return fmt.Errorf("%w: insert site_visits row %d: %v", domain.ErrStorageUnavailable, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}
