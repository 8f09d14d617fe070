package domain

// MasterEntry 站点主数据（对应 Master Data 工作簿一行）
// 只读参考数据：查询时实时读取，不做缓存
type MasterEntry struct {
	SiteID string `json:"site_id"`
	RTO    string `json:"rto"`
	Region string `json:"region"`
}
