package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketNumber_Format(t *testing.T) {
	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "TT_SITE01_20250101_090000", TicketNumber("SITE01", at))
}

func TestTicketNumber_SecondGranularity(t *testing.T) {
	at := time.Date(2025, 7, 15, 23, 59, 58, 0, time.UTC)
	a := TicketNumber("POM-001", at)
	b := TicketNumber("POM-001", at.Add(time.Second))
	assert.NotEqual(t, a, b)

	// 同一秒内亚秒差异不影响工单号（已接受的碰撞边界）
	c := TicketNumber("POM-001", at.Add(500*time.Millisecond))
	assert.Equal(t, a, c)
}
