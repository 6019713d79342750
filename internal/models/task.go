package models

import (
	"fmt"
	"strings"
	"time"
)

// TraversalOrder 页面遍历顺序
type TraversalOrder string

const (
	OrderDFS TraversalOrder = "dfs" // 深度优先(默认,访问顺序与递归实现一致)
	OrderBFS TraversalOrder = "bfs" // 广度优先
)

// ParseTraversalOrder 解析遍历顺序字符串,空字符串视为dfs
func ParseTraversalOrder(s string) (TraversalOrder, error) {
	switch TraversalOrder(strings.ToLower(strings.TrimSpace(s))) {
	case "", OrderDFS:
		return OrderDFS, nil
	case OrderBFS:
		return OrderBFS, nil
	default:
		return "", fmt.Errorf("无效的遍历顺序: %s (有效值: dfs, bfs)", s)
	}
}

const (
	// DefaultMaxDepth 递归模式下的默认最大深度
	DefaultMaxDepth = 5

	// DefaultTimeout 单个网络请求的默认超时(秒)
	DefaultTimeout = 5

	// DefaultDownloadDir 默认图片下载目录
	DefaultDownloadDir = "./data/"
)

// TaskStats 任务统计
type TaskStats struct {
	VisitedPages     int     `json:"visited_pages"`      // 已访问页面数
	FailedPages      int     `json:"failed_pages"`       // 抓取失败页面数
	ImagesFound      int     `json:"images_found"`       // 发现的图片候选数
	ImagesDownloaded int     `json:"images_downloaded"`  // 成功下载图片数
	ImagesFailed     int     `json:"images_failed"`      // 下载失败图片数
	ImagesSkipped    int     `json:"images_skipped"`     // 判定为非图片的候选数
	ImagesDuplicate  int     `json:"images_duplicate"`   // 本次运行中已下载过的图片URL
	ProbeRequests    int     `json:"probe_requests"`     // HEAD探测次数
	TotalSize        int64   `json:"total_size"`         // 下载总大小(字节)
	MaxDepthReached  int     `json:"max_depth_reached"`  // 实际到达的最大深度
	Duration         float64 `json:"duration"`           // 总耗时(秒)
}

// Merge 累加另一份统计(批量模式汇总用)
func (s *TaskStats) Merge(other TaskStats) {
	s.VisitedPages += other.VisitedPages
	s.FailedPages += other.FailedPages
	s.ImagesFound += other.ImagesFound
	s.ImagesDownloaded += other.ImagesDownloaded
	s.ImagesFailed += other.ImagesFailed
	s.ImagesSkipped += other.ImagesSkipped
	s.ImagesDuplicate += other.ImagesDuplicate
	s.ProbeRequests += other.ProbeRequests
	s.TotalSize += other.TotalSize
	if other.MaxDepthReached > s.MaxDepthReached {
		s.MaxDepthReached = other.MaxDepthReached
	}
	s.Duration += other.Duration
}

// CrawlConfig 爬取配置
type CrawlConfig struct {
	Recursive          bool   `json:"recursive" mapstructure:"recursive"`                       // 是否递归跟随链接 (默认:false)
	MaxDepth           int    `json:"max_depth" mapstructure:"max_depth"`                       // 递归模式下的最大深度 (默认:5)
	Timeout            int    `json:"timeout" mapstructure:"timeout"`                           // 单个请求超时(秒) (默认:5)
	Order              string `json:"order" mapstructure:"order"`                               // 遍历顺序 dfs|bfs (默认:dfs)
	MaxBodySizeMB      int    `json:"max_body_size_mb" mapstructure:"max_body_size_mb"`         // 响应体大小上限(MB), 0为不限制
	InsecureSkipVerify bool   `json:"insecure_skip_verify" mapstructure:"insecure_skip_verify"` // 跳过TLS证书验证
	DedupeImages       bool   `json:"dedupe_images" mapstructure:"dedupe_images"`               // 同一次运行中同一图片URL只下载一次 (默认:false)
}

// DefaultCrawlConfig 默认爬取配置
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		Recursive:     false,
		MaxDepth:      DefaultMaxDepth,
		Timeout:       DefaultTimeout,
		Order:         string(OrderDFS),
		MaxBodySizeMB: MaxFileSize / (1024 * 1024),
	}
}

// EffectiveMaxDepth 返回本次爬取实际使用的最大深度
// 非递归模式只处理入口页面上的图片,深度上限为0
func (c CrawlConfig) EffectiveMaxDepth() int {
	if !c.Recursive {
		return 0
	}
	return c.MaxDepth
}

// RequestTimeout 返回单个请求的超时时间
func (c CrawlConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// MaxBodySize 返回响应体大小上限(字节), 0表示不限制
func (c CrawlConfig) MaxBodySize() int {
	if c.MaxBodySizeMB <= 0 {
		return 0
	}
	return c.MaxBodySizeMB * 1024 * 1024
}

// Validate 验证配置
func (c *CrawlConfig) Validate() error {
	if c.MaxDepth < 0 || c.MaxDepth > 100 {
		return fmt.Errorf("最大深度必须在0-100之间,当前值: %d", c.MaxDepth)
	}
	if c.Timeout < 1 || c.Timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间,当前值: %d", c.Timeout)
	}
	if c.MaxBodySizeMB < 0 {
		return fmt.Errorf("响应体大小上限不能为负数")
	}
	if _, err := ParseTraversalOrder(c.Order); err != nil {
		return err
	}
	return nil
}
