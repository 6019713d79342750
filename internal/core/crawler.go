package core

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/RecoveryAshes/ImgSpider/internal/crawlers"
	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// Spider 单个入口URL的爬取协调器
// 负责校验入口URL、准备下载目录、组装抓取器/判定器/下载器/引擎并输出摘要和报告
type Spider struct {
	config  *Config
	seedURL string
	host    string
	runID   string

	headerProvider models.HeaderProvider
	observer       crawlers.Observer

	result *crawlers.CrawlResult
}

// NewSpider 创建爬取协调器
// 入口URL无效时返回 KindInvalidURL 错误
func NewSpider(seedURL string, config *Config, headerProvider models.HeaderProvider) (*Spider, error) {
	if err := models.ValidateURL(seedURL); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	if headerProvider == nil {
		headerProvider = defaultHeaderProvider()
	}

	parsed, _ := url.Parse(seedURL)

	return &Spider{
		config:         config,
		seedURL:        seedURL,
		host:           parsed.Host,
		runID:          models.NewID(),
		headerProvider: headerProvider,
	}, nil
}

// SetObserver 设置进度观察者
func (s *Spider) SetObserver(observer crawlers.Observer) {
	s.observer = observer
}

// Run 执行爬取任务
// 只有头部配置错误和下载目录创建失败会返回错误, 页面和图片的失败记录在结果中
func (s *Spider) Run(ctx context.Context) (*crawlers.CrawlResult, error) {
	crawlConfig := s.config.GetCrawlConfig()
	maxDepth := crawlConfig.EffectiveMaxDepth()
	order := s.config.TraversalOrder()
	downloadDir := s.config.Output.DownloadDir

	utils.Infof("🚀 开始爬取任务")
	utils.Infof("目标URL: %s", s.seedURL)
	utils.Infof("最大深度: %d (递归: %v)", maxDepth, crawlConfig.Recursive)
	utils.Infof("遍历顺序: %s", order)
	utils.Infof("下载目录: %s", downloadDir)

	// 提前暴露头部配置错误,避免每个请求都失败
	headers, err := s.headerProvider.GetHeaders()
	if err != nil {
		return nil, fmt.Errorf("HTTP头部配置无效: %w", err)
	}
	utils.Debugf("请求头部: %s", utils.NewHeaderRedactor().RedactToString(headers))

	if err := os.MkdirAll(downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("创建下载目录失败: %w", err)
	}

	fetcher := crawlers.NewFetcher(crawlConfig, s.headerProvider)
	downloader := crawlers.NewImageDownloader(fetcher, crawlers.NewDiskMonitor(s.config.Storage.MinFreeMB))
	downloader.SetMaxSize(int64(crawlConfig.MaxBodySize()))

	opts := []crawlers.Option{
		crawlers.WithOrder(order),
		crawlers.WithDownloadDir(downloadDir),
		crawlers.WithClassifier(crawlers.NewImageClassifier(fetcher)),
		crawlers.WithDownloader(downloader),
		crawlers.WithImageDedup(crawlConfig.DedupeImages),
	}
	if s.observer != nil {
		opts = append(opts, crawlers.WithObserver(s.observer))
	}

	engine := crawlers.NewEngine(fetcher, opts...)
	result, err := engine.Crawl(ctx, s.seedURL, maxDepth)
	if err != nil {
		return nil, err
	}
	s.result = result

	s.logSummary(result)

	if s.config.Report.Enabled {
		reporter := utils.NewReporter(s.config.Report.Dir)
		if dir, err := reporter.GenerateReport(s.BuildReport()); err != nil {
			utils.Warnf("生成报告失败: %v", err)
		} else {
			utils.Infof("📄 报告已生成: %s", dir)
		}
	}

	return result, nil
}

// Result 返回最近一次运行的结果, 未运行时为nil
func (s *Spider) Result() *crawlers.CrawlResult {
	return s.result
}

// Host 返回入口URL的主机名
func (s *Spider) Host() string {
	return s.host
}

// BuildReport 根据运行结果生成报告模型
func (s *Spider) BuildReport() *models.CrawlReport {
	report := &models.CrawlReport{
		RunID:       s.runID,
		SeedURL:     s.seedURL,
		Host:        s.host,
		DownloadDir: s.config.Output.DownloadDir,
		Config:      s.config.GetCrawlConfig(),
	}
	if s.result == nil {
		return report
	}

	r := s.result
	report.Order = r.Order
	report.MaxDepth = r.MaxDepth
	report.StartTime = r.StartTime
	report.EndTime = r.EndTime
	report.Duration = r.Stats.Duration
	report.Stats = r.Stats
	report.VisitedURLs = r.VisitedURLs
	report.Downloads = r.Downloads
	report.Failures = r.Failures
	return report
}

// logSummary 输出爬取摘要
func (s *Spider) logSummary(result *crawlers.CrawlResult) {
	stats := result.Stats
	if result.Interrupted {
		utils.Warnf("⚠️  爬取任务被中断")
	} else {
		utils.Infof("✅ 爬取任务完成")
	}
	utils.Infof("访问页面: %d (失败: %d, 最大深度: %d)", stats.VisitedPages, stats.FailedPages, stats.MaxDepthReached)
	utils.Infof("发现图片: %d, 下载: %d, 失败: %d, 跳过: %d, 重复: %d",
		stats.ImagesFound, stats.ImagesDownloaded, stats.ImagesFailed, stats.ImagesSkipped, stats.ImagesDuplicate)
	utils.Infof("HEAD探测: %d 次", stats.ProbeRequests)
	utils.Infof("总大小: %.2f MB", float64(stats.TotalSize)/(1024*1024))
	utils.Infof("总耗时: %.2f秒", stats.Duration)
}

// defaultHeaderProvider 不读取任何配置文件的默认头部
func defaultHeaderProvider() models.HeaderProvider {
	return models.StaticHeaders(getDefaultHeaders())
}
