package core

import (
	"context"
	"fmt"
	"time"

	"github.com/RecoveryAshes/ImgSpider/internal/crawlers"
	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// BatchSpider 批量爬取器
// 每个URL使用独立的Spider和已访问集合, 单个URL失败不影响后续URL
type BatchSpider struct {
	config         *Config
	batchDelay     time.Duration
	headerProvider models.HeaderProvider
	observer       crawlers.Observer
}

// BatchResult 单个URL的爬取结果
type BatchResult struct {
	URL         string
	Success     bool
	Error       error
	Stats       models.TaskStats
	Downloads   []models.DownloadedFile
	Interrupted bool
	ProcessedAt time.Time
	Duration    float64
}

// BatchSummary 批量爬取摘要
type BatchSummary struct {
	TotalURLs     int
	SuccessCount  int
	FailCount     int
	Stats         models.TaskStats // 所有成功URL的累计统计
	TotalDuration float64
	Interrupted   bool
	Results       []BatchResult
}

// NewBatchSpider 创建批量爬取器
func NewBatchSpider(config *Config, headerProvider models.HeaderProvider) *BatchSpider {
	if config == nil {
		config = DefaultConfig()
	}
	return &BatchSpider{
		config:         config,
		headerProvider: headerProvider,
	}
}

// SetBatchDelay 设置两个URL之间的等待时间
func (bs *BatchSpider) SetBatchDelay(delay time.Duration) {
	bs.batchDelay = delay
}

// SetObserver 设置所有URL共用的进度观察者
func (bs *BatchSpider) SetObserver(observer crawlers.Observer) {
	bs.observer = observer
}

// CrawlBatch 依次爬取URL列表
// context取消后不再开始新的URL
func (bs *BatchSpider) CrawlBatch(ctx context.Context, urls []string) *BatchSummary {
	utils.Infof("🚀 开始批量爬取: %d个URL", len(urls))

	summary := &BatchSummary{
		TotalURLs: len(urls),
		Results:   make([]BatchResult, 0, len(urls)),
	}

	startTime := time.Now()

	for i, targetURL := range urls {
		if ctx.Err() != nil {
			utils.Warnf("⏹️  批量爬取已取消,剩余 %d 个URL未处理", len(urls)-i)
			summary.Interrupted = true
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(urls))
		utils.Infof("目标URL: %s", targetURL)

		result := bs.crawlSingleURL(ctx, targetURL)
		summary.Results = append(summary.Results, result)

		if result.Success {
			summary.SuccessCount++
			summary.Stats.Merge(result.Stats)
		} else {
			summary.FailCount++
			utils.Errorf("❌ 爬取失败: %v", result.Error)
		}
		if result.Interrupted {
			summary.Interrupted = true
		}

		if i < len(urls)-1 && bs.batchDelay > 0 {
			utils.Debugf("等待 %.0f 秒后处理下一个URL...", bs.batchDelay.Seconds())
			select {
			case <-ctx.Done():
			case <-time.After(bs.batchDelay):
			}
		}
	}

	summary.TotalDuration = time.Since(startTime).Seconds()

	bs.printSummary(summary)

	return summary
}

// crawlSingleURL 爬取单个URL
func (bs *BatchSpider) crawlSingleURL(ctx context.Context, targetURL string) BatchResult {
	result := BatchResult{
		URL:         targetURL,
		ProcessedAt: time.Now(),
	}
	startTime := time.Now()

	spider, err := NewSpider(targetURL, bs.config, bs.headerProvider)
	if err != nil {
		result.Error = fmt.Errorf("创建爬取器失败: %w", err)
		result.Duration = time.Since(startTime).Seconds()
		return result
	}
	if bs.observer != nil {
		spider.SetObserver(bs.observer)
	}

	crawlResult, err := spider.Run(ctx)
	if err != nil {
		result.Error = fmt.Errorf("爬取失败: %w", err)
		result.Duration = time.Since(startTime).Seconds()
		return result
	}

	result.Success = true
	result.Stats = crawlResult.Stats
	result.Downloads = crawlResult.Downloads
	result.Interrupted = crawlResult.Interrupted
	result.Duration = time.Since(startTime).Seconds()
	return result
}

// printSummary 打印批量爬取摘要
func (bs *BatchSpider) printSummary(summary *BatchSummary) {
	utils.Info("==================================================")
	utils.Info("📊 批量爬取摘要")
	utils.Info("==================================================")
	utils.Infof("总URL数: %d", summary.TotalURLs)
	utils.Infof("✅ 成功: %d", summary.SuccessCount)
	utils.Infof("❌ 失败: %d", summary.FailCount)
	utils.Infof("🕷️  访问页面: %d", summary.Stats.VisitedPages)
	utils.Infof("🖼️  下载图片: %d", summary.Stats.ImagesDownloaded)
	utils.Infof("📦 总大小: %.2f MB", float64(summary.Stats.TotalSize)/(1024*1024))
	utils.Infof("⏱️  总耗时: %.2f秒", summary.TotalDuration)
	utils.Info("==================================================")

	if summary.FailCount > 0 {
		utils.Warn("失败的URL:")
		for _, result := range summary.Results {
			if !result.Success {
				utils.Warnf("  - %s: %v", result.URL, result.Error)
			}
		}
	}
}
