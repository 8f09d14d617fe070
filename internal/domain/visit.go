package domain

import "time"

// VisitStatus 站点访问会话状态
type VisitStatus string

const (
	VisitOpen   VisitStatus = "OPEN"
	VisitClosed VisitStatus = "CLOSED"
)

// PhotoNone 无照片占位值（与历史 Excel 数据保持一致）
const PhotoNone = "N/A"

// VisitRecord 一条站点访问记录（登入后 OPEN，登出后 CLOSED）
type VisitRecord struct {
	Timestamp  time.Time   `json:"timestamp"`
	PersonName string      `json:"person_name"`
	Phone      string      `json:"phone"`
	SiteID     string      `json:"site_id"`
	RTO        string      `json:"rto"`
	Region     string      `json:"region"`
	TicketNo   string      `json:"ticket_number"`
	Remarks    string      `json:"remarks"`
	Latitude   *float64    `json:"latitude,omitempty"`
	Longitude  *float64    `json:"longitude,omitempty"`
	PhotoRef   string      `json:"photo_ref"`
	OpenedAt   time.Time   `json:"opened_at"`
	ClosedAt   *time.Time  `json:"closed_at,omitempty"`
	Status     VisitStatus `json:"status"`
}

// IsOpen 该记录是否仍处于 OPEN 状态
func (v *VisitRecord) IsOpen() bool {
	return v.Status == VisitOpen
}

// Matches 判断记录是否属于给定 (site, person) 会话键
func (v *VisitRecord) Matches(siteID, personName string) bool {
	return v.SiteID == siteID && v.PersonName == personName
}

// Dwell 已关闭记录的停留时长；未关闭返回 0
func (v *VisitRecord) Dwell() time.Duration {
	if v.ClosedAt == nil {
		return 0
	}
	d := v.ClosedAt.Sub(v.OpenedAt)
	if d < 0 {
		return 0
	}
	return d
}
