package service

import (
	"fmt"
	"time"
)

// ticketTimeLayout 工单号中的时间戳格式（秒级精度）
const ticketTimeLayout = "20060102_150405"

// TicketNumber 生成工单号：TT_{site_id}_{YYYYMMDD_HHMMSS}
// 全进程必须使用同一时区的时间源，否则跨 DST/时区会产生乱序或碰撞的工单号。
// 同一站点同一秒内两次登入会碰撞，这是已接受的边界情况。
func TicketNumber(siteID string, at time.Time) string {
	return fmt.Sprintf("TT_%s_%s", siteID, at.Format(ticketTimeLayout))
}
