package crawlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// HTTPClient 爬取引擎依赖的HTTP能力
type HTTPClient interface {
	PageGetter
	HeadProber
}

// Classifier 判定候选URL是否为图片
type Classifier interface {
	IsImage(ctx context.Context, candidateURL string) bool
}

// Downloader 下载图片到目标目录
type Downloader interface {
	Download(ctx context.Context, imageURL, targetDir string) (*models.DownloadedFile, error)
}

// Observer 爬取进度观察者
type Observer interface {
	PageVisited(url string, depth int)
	ImageSaved(file *models.DownloadedFile)
}

type probeCounter interface {
	ProbeCount() int
}

// CrawlResult 一次爬取的结果
type CrawlResult struct {
	SeedURL     string
	MaxDepth    int
	Order       models.TraversalOrder
	VisitedURLs []string // 按访问顺序
	Downloads   []models.DownloadedFile
	Failures    []models.FailedResource
	Stats       models.TaskStats
	StartTime   time.Time
	EndTime     time.Time
	Interrupted bool // 因context取消提前结束
}

// Engine 爬取引擎
// 维护已访问集合和工作列表,对每个页面先处理图片,再在深度允许时调度子链接
type Engine struct {
	client       HTTPClient
	order        models.TraversalOrder
	downloadDir  string
	observer     Observer
	classifier   Classifier
	downloader   Downloader
	extractor    *LinkExtractor
	dedupeImages bool
}

// Option 引擎选项
type Option func(*Engine)

// WithOrder 设置遍历顺序
func WithOrder(order models.TraversalOrder) Option {
	return func(e *Engine) {
		e.order = order
	}
}

// WithDownloadDir 设置图片下载目录
func WithDownloadDir(dir string) Option {
	return func(e *Engine) {
		e.downloadDir = dir
	}
}

// WithObserver 设置进度观察者
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithClassifier 替换图片判定器
func WithClassifier(classifier Classifier) Option {
	return func(e *Engine) {
		e.classifier = classifier
	}
}

// WithDownloader 替换图片下载器
func WithDownloader(downloader Downloader) Option {
	return func(e *Engine) {
		e.downloader = downloader
	}
}

// WithParser 替换HTML解析器
func WithParser(parser ElementFinder) Option {
	return func(e *Engine) {
		e.extractor = NewLinkExtractor(parser)
	}
}

// WithImageDedup 同一次运行中同一图片URL是否只下载一次 (默认关闭, 每个页面上的图片都会下载)
func WithImageDedup(enabled bool) Option {
	return func(e *Engine) {
		e.dedupeImages = enabled
	}
}

// NewEngine 创建爬取引擎
func NewEngine(client HTTPClient, opts ...Option) *Engine {
	e := &Engine{
		client:      client,
		order:       models.OrderDFS,
		downloadDir: models.DefaultDownloadDir,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.classifier == nil {
		e.classifier = NewImageClassifier(client)
	}
	if e.downloader == nil {
		e.downloader = NewImageDownloader(client, nil)
	}
	if e.extractor == nil {
		e.extractor = NewLinkExtractor(nil)
	}
	return e
}

// crawlRun 单次Crawl调用的状态,调用结束即丢弃
type crawlRun struct {
	maxDepth   int
	visited    *VisitedSet
	work       *WorkList
	downloaded map[string]struct{}
	result     *CrawlResult
}

// Crawl 从seedURL开始爬取
// 入口URL无效时返回KindInvalidURL错误且不发起任何请求;
// 之后的页面或图片失败只记录到结果中,不会中断爬取
func (e *Engine) Crawl(ctx context.Context, seedURL string, maxDepth int) (*CrawlResult, error) {
	if !IsValidURL(seedURL) {
		return nil, models.NewCrawlError(models.KindInvalidURL, seedURL, errors.New("入口URL必须是带主机名的http/https地址"))
	}
	if maxDepth < 0 {
		maxDepth = 0
	}

	if err := os.MkdirAll(e.downloadDir, 0755); err != nil {
		return nil, fmt.Errorf("创建下载目录失败: %w", err)
	}

	run := &crawlRun{
		maxDepth:   maxDepth,
		visited:    NewVisitedSet(),
		work:       NewWorkList(e.order),
		downloaded: make(map[string]struct{}),
		result: &CrawlResult{
			SeedURL:   seedURL,
			MaxDepth:  maxDepth,
			Order:     e.order,
			StartTime: time.Now(),
		},
	}

	probesBefore := e.probeCount()

	run.work.Push(models.URLItem{URL: seedURL, Depth: 0})
	for run.work.Len() > 0 {
		if err := ctx.Err(); err != nil {
			utils.Warnf("⏹️  爬取已取消,剩余 %d 个待处理链接", run.work.Len())
			run.result.Interrupted = true
			break
		}

		item, _ := run.work.Pop()
		e.visit(ctx, run, item)
	}

	res := run.result
	res.EndTime = time.Now()
	res.VisitedURLs = run.visited.URLs()
	res.Stats.ProbeRequests = e.probeCount() - probesBefore
	res.Stats.Duration = res.EndTime.Sub(res.StartTime).Seconds()
	return res, nil
}

// visit 处理单个工作项
func (e *Engine) visit(ctx context.Context, run *crawlRun, item models.URLItem) {
	normalized := NormalizeURL(item.URL)

	// 深度和已访问检查都在任何网络请求之前
	if item.Depth > run.maxDepth {
		return
	}
	if !run.visited.MarkVisited(normalized) {
		return
	}

	stats := &run.result.Stats
	stats.VisitedPages++
	if item.Depth > stats.MaxDepthReached {
		stats.MaxDepthReached = item.Depth
	}

	utils.Infof("🕷️  爬取: %s (深度: %d)", normalized, item.Depth)
	if e.observer != nil {
		e.observer.PageVisited(normalized, item.Depth)
	}

	page, err := e.client.Get(ctx, normalized)
	if err != nil {
		stats.FailedPages++
		e.recordFailure(run, normalized, item, err, models.KindFetchFailure)
		utils.Warnf("❌ 页面抓取失败 [%s]: %v", normalized, err)
		return
	}

	base := page.BaseURL()

	for _, imageURL := range e.extractor.ExtractImageCandidates(page, base) {
		e.processImage(ctx, run, imageURL, normalized, item.Depth)
	}

	if item.Depth >= run.maxDepth {
		return
	}

	var children []models.URLItem
	for _, link := range e.extractor.ExtractLinks(page, base) {
		if run.visited.Contains(link) {
			continue
		}
		children = append(children, models.URLItem{
			URL:       link,
			Depth:     item.Depth + 1,
			SourceURL: normalized,
		})
	}
	utils.Debugf("发现 %d 个待访问链接 [%s]", len(children), normalized)
	run.work.PushChildren(children)
}

// processImage 判定并下载单个图片, 失败只影响这一张图片
func (e *Engine) processImage(ctx context.Context, run *crawlRun, imageURL, sourcePage string, depth int) {
	stats := &run.result.Stats
	stats.ImagesFound++

	if e.dedupeImages {
		if _, ok := run.downloaded[imageURL]; ok {
			stats.ImagesDuplicate++
			utils.Debugf("图片已下载,跳过: %s", imageURL)
			return
		}
	}

	if !e.classifier.IsImage(ctx, imageURL) {
		stats.ImagesSkipped++
		return
	}

	file, err := e.downloader.Download(ctx, imageURL, e.downloadDir)
	if err != nil {
		stats.ImagesFailed++
		e.recordFailure(run, imageURL, models.URLItem{Depth: depth, SourceURL: sourcePage}, err, models.KindFetchFailure)
		utils.Warnf("❌ 图片下载失败 [%s]: %v", imageURL, err)
		return
	}

	file.SourcePage = sourcePage
	file.Depth = depth

	run.downloaded[imageURL] = struct{}{}
	stats.ImagesDownloaded++
	stats.TotalSize += file.Size
	run.result.Downloads = append(run.result.Downloads, *file)

	if e.observer != nil {
		e.observer.ImageSaved(file)
	}
}

// recordFailure 记录失败资源, err不是CrawlError时使用fallback分类
func (e *Engine) recordFailure(run *crawlRun, url string, item models.URLItem, err error, fallback models.ErrorKind) {
	kind := models.KindOf(err)
	if kind == "" {
		kind = fallback
	}

	run.result.Failures = append(run.result.Failures, models.FailedResource{
		URL:        url,
		Kind:       kind,
		ErrorMsg:   err.Error(),
		SourcePage: item.SourceURL,
		Depth:      item.Depth,
	})
}

func (e *Engine) probeCount() int {
	if pc, ok := e.classifier.(probeCounter); ok {
		return pc.ProbeCount()
	}
	return 0
}
