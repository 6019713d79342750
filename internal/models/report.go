package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 爬取报告
type CrawlReport struct {
	// 任务信息
	RunID    string         `json:"run_id"`
	SeedURL  string         `json:"seed_url"`
	Host     string         `json:"host"`
	Order    TraversalOrder `json:"order"`
	MaxDepth int            `json:"max_depth"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 结果
	VisitedURLs []string         `json:"visited_urls"` // 按访问顺序
	Downloads   []DownloadedFile `json:"downloads"`
	Failures    []FailedResource `json:"failures"`

	// 输出路径
	DownloadDir string `json:"download_dir"`

	// 配置快照
	Config CrawlConfig `json:"config"`
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
