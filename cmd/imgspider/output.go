package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/rodaine/table"
	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// progressObserver 用进度条展示已访问页面和已保存图片
type progressObserver struct {
	mu       sync.Mutex
	bar      *progressbar.ProgressBar
	pages    int
	images   int
	finished bool
}

func newProgressObserver() *progressObserver {
	return &progressObserver{
		bar: utils.NewProgressBar(-1, "🖼️  下载图片"),
	}
}

// PageVisited 实现 crawlers.Observer
func (p *progressObserver) PageVisited(url string, depth int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages++
	p.bar.Describe(fmt.Sprintf("🕷️  页面 %d (深度 %d)", p.pages, depth))
}

// ImageSaved 实现 crawlers.Observer
func (p *progressObserver) ImageSaved(file *models.DownloadedFile) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.images++
	_ = p.bar.Add(1)
}

// Finish 结束进度条, 可重复调用
func (p *progressObserver) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return
	}
	p.finished = true
	_ = p.bar.Finish()
}

// printDownloads 以表格形式输出已下载的文件
func printDownloads(w io.Writer, files []models.DownloadedFile) {
	if len(files) == 0 {
		fmt.Fprintln(w, "没有下载任何图片")
		return
	}

	tbl := table.New("文件名", "大小", "深度", "URL")
	tbl.WithWriter(w)
	for _, f := range files {
		tbl.AddRow(f.FileName, formatSize(f.Size), f.Depth, f.URL)
	}
	tbl.Print()
}

// printStats 输出爬取统计
func printStats(w io.Writer, stats models.TaskStats) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, "📊 爬取统计")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "✅ 访问页面数: %d\n", stats.VisitedPages)
	fmt.Fprintf(w, "❌ 失败页面数: %d\n", stats.FailedPages)
	fmt.Fprintf(w, "✅ 下载图片数: %d\n", stats.ImagesDownloaded)
	fmt.Fprintf(w, "❌ 失败图片数: %d\n", stats.ImagesFailed)
	fmt.Fprintf(w, "📦 总大小: %s\n", formatSize(stats.TotalSize))
	fmt.Fprintf(w, "⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Fprintln(w, "==================================================")
}

// formatSize 格式化字节数
func formatSize(size int64) string {
	switch {
	case size >= 1024*1024:
		return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
	case size >= 1024:
		return fmt.Sprintf("%.2f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
