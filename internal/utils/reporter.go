package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/nao1215/markdown"
	"github.com/schollz/progressbar/v3"
)

const (
	// ReportJSONFile 主报告文件名
	ReportJSONFile = "crawl_report.json"

	// DownloadsJSONFile 下载文件列表
	DownloadsJSONFile = "downloaded_files.json"

	// FailuresJSONFile 失败列表
	FailuresJSONFile = "failures.json"

	// ReportMarkdownFile Markdown摘要
	ReportMarkdownFile = "crawl_report.md"
)

// Reporter 报告生成器
type Reporter struct {
	outputDir string
}

// NewReporter 创建报告生成器
func NewReporter(outputDir string) *Reporter {
	return &Reporter{
		outputDir: outputDir,
	}
}

// ReportDir 返回某个主机的报告目录
func (r *Reporter) ReportDir(host string) string {
	if host == "" {
		host = "unknown"
	}
	return filepath.Join(r.outputDir, host)
}

// GenerateReport 生成爬取报告
// 输出: {outputDir}/{host}/ 下的JSON报告、下载列表、失败列表和Markdown摘要
func (r *Reporter) GenerateReport(report *models.CrawlReport) (string, error) {
	reportsDir := r.ReportDir(report.Host)
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	downloads := report.Downloads
	if downloads == nil {
		downloads = []models.DownloadedFile{}
	}
	failures := report.Failures
	if failures == nil {
		failures = []models.FailedResource{}
	}

	if err := r.saveJSONReport(reportsDir, ReportJSONFile, report); err != nil {
		return "", err
	}
	if err := r.saveJSONReport(reportsDir, DownloadsJSONFile, downloads); err != nil {
		return "", err
	}
	if err := r.saveJSONReport(reportsDir, FailuresJSONFile, failures); err != nil {
		return "", err
	}
	if err := r.saveMarkdownReport(reportsDir, report); err != nil {
		return "", err
	}

	Infof("✅ 报告已生成: %s", reportsDir)
	return reportsDir, nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(dir string, filename string, data interface{}) error {
	path := filepath.Join(dir, filename)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// saveMarkdownReport 保存Markdown摘要
func (r *Reporter) saveMarkdownReport(dir string, report *models.CrawlReport) error {
	path := filepath.Join(dir, ReportMarkdownFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建Markdown报告失败: %w", err)
	}
	defer f.Close()

	md := markdown.NewMarkdown(f)
	md.H1("ImgSpider 爬取报告")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"项目", "值"},
		Rows: [][]string{
			{"入口URL", "`" + report.SeedURL + "`"},
			{"运行ID", report.RunID},
			{"遍历顺序", string(report.Order)},
			{"最大深度", strconv.Itoa(report.MaxDepth)},
			{"开始时间", report.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"耗时(秒)", strconv.FormatFloat(report.Duration, 'f', 2, 64)},
			{"下载目录", "`" + report.DownloadDir + "`"},
		},
	})
	md.PlainText("")

	md.H2("统计")
	md.PlainText("")
	s := report.Stats
	md.Table(markdown.TableSet{
		Header: []string{"指标", "数量"},
		Rows: [][]string{
			{"访问页面", strconv.Itoa(s.VisitedPages)},
			{"失败页面", strconv.Itoa(s.FailedPages)},
			{"图片候选", strconv.Itoa(s.ImagesFound)},
			{"下载成功", strconv.Itoa(s.ImagesDownloaded)},
			{"下载失败", strconv.Itoa(s.ImagesFailed)},
			{"非图片", strconv.Itoa(s.ImagesSkipped)},
			{"HEAD探测", strconv.Itoa(s.ProbeRequests)},
			{"总大小(字节)", strconv.FormatInt(s.TotalSize, 10)},
		},
	})
	md.PlainText("")

	md.H2("已下载图片")
	md.PlainText("")
	if len(report.Downloads) == 0 {
		md.PlainText("没有下载任何图片。")
	} else {
		rows := make([][]string, 0, len(report.Downloads))
		for _, d := range report.Downloads {
			rows = append(rows, []string{d.URL, d.FileName, strconv.FormatInt(d.Size, 10)})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "文件名", "大小"},
			Rows:   rows,
		})
	}
	md.PlainText("")

	if len(report.Failures) > 0 {
		md.H2("失败")
		md.PlainText("")
		rows := make([][]string, 0, len(report.Failures))
		for _, f := range report.Failures {
			rows = append(rows, []string{f.URL, string(f.Kind), f.ErrorMsg})
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "类型", "原因"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

// NewProgressBar 创建进度条, max为-1时显示为不定长的旋转指示器
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
