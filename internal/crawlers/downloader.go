package crawlers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// maxNameAttempts 同名文件后缀尝试上限
const maxNameAttempts = 10000

// PageGetter 发送GET请求并返回完整响应
type PageGetter interface {
	Get(ctx context.Context, rawURL string) (*models.Page, error)
}

// ImageDownloader 图片下载器
type ImageDownloader struct {
	client  PageGetter
	disk    SpaceChecker
	maxSize int64 // 单个图片大小上限(字节), 0为不限制
	now     func() time.Time
}

// NewImageDownloader 创建图片下载器, disk为nil时不检查磁盘空间
// 默认大小上限为 models.MaxFileSize
func NewImageDownloader(client PageGetter, disk SpaceChecker) *ImageDownloader {
	return &ImageDownloader{
		client:  client,
		disk:    disk,
		maxSize: models.MaxFileSize,
		now:     time.Now,
	}
}

// SetMaxSize 设置单个图片大小上限(字节), <=0 表示不限制
func (d *ImageDownloader) SetMaxSize(maxSize int64) {
	if maxSize < 0 {
		maxSize = 0
	}
	d.maxSize = maxSize
}

// Download 下载图片并保存到targetDir
// 先完整读取响应体再写文件,下载失败时不产生任何文件。
// 同名文件已存在时依次尝试 name_1.ext, name_2.ext ...,
// 存在检查与创建通过O_EXCL合并为一次文件系统操作。
func (d *ImageDownloader) Download(ctx context.Context, imageURL, targetDir string) (*models.DownloadedFile, error) {
	page, err := d.client.Get(ctx, imageURL)
	if err != nil {
		if models.KindOf(err) != "" {
			return nil, err
		}
		return nil, models.NewCrawlError(models.KindFetchFailure, imageURL, err)
	}

	file := &models.DownloadedFile{
		ID:          models.NewID(),
		URL:         imageURL,
		Size:        int64(len(page.Body)),
		ContentType: page.ContentType(),
	}
	if err := file.ValidateSize(d.maxSize); err != nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, imageURL, err)
	}

	name := d.fileName(imageURL, page)

	if d.disk != nil {
		if err := d.disk.CheckSpace(targetDir, file.Size); err != nil {
			if models.KindOf(err) != "" {
				return nil, err
			}
			return nil, models.NewCrawlError(models.KindDownloadWriteFailure, imageURL, err)
		}
	}

	path, err := writeExclusive(targetDir, name, page.Body)
	if err != nil {
		return nil, models.NewCrawlError(models.KindDownloadWriteFailure, imageURL, err)
	}

	file.FileName = filepath.Base(path)
	file.FilePath = path
	file.DownloadedAt = d.now()

	utils.Infof("📥 下载完成: %s -> %s", imageURL, file.FileName)
	return file, nil
}

// fileName 由URL最后一段路径推导文件名,缺少扩展名时根据Content-Type或内容补全
func (d *ImageDownloader) fileName(imageURL string, page *models.Page) string {
	name := lastPathSegment(imageURL)
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("image_%d", d.now().Unix())
	}

	if _, ext := splitExt(name); ext != "" {
		return name
	}

	contentType := page.ContentType()
	if needsSniff(contentType) {
		if ext, ok := SniffExtension(page.Body); ok {
			return name + ext
		}
		return name
	}
	if ext, ok := ExtensionFor(contentType); ok {
		return name + ext
	}
	return name
}

// lastPathSegment 返回URL路径中最后一个'/'之后的部分(保持转义形式)
// 路径以'/'结尾或为 "."/".." 时返回空字符串
func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	p := u.EscapedPath()
	segment := p[strings.LastIndex(p, "/")+1:]
	if segment == "." || segment == ".." {
		return ""
	}
	return segment
}

// splitExt 拆分文件名与扩展名,开头的'.'不视为扩展名分隔符 (".hidden" 没有扩展名)
func splitExt(name string) (string, string) {
	stripped := strings.TrimLeft(name, ".")
	idx := strings.LastIndex(stripped, ".")
	if idx < 0 {
		return name, ""
	}
	idx += len(name) - len(stripped)
	return name[:idx], name[idx:]
}

// writeExclusive 以独占方式创建不冲突的文件并写入内容,写入失败时删除残留文件
func writeExclusive(dir, name string, content []byte) (string, error) {
	base, ext := splitExt(name)

	for i := 0; i < maxNameAttempts; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return "", fmt.Errorf("创建文件失败: %w", err)
		}

		if _, err := f.Write(content); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("写入文件失败: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("关闭文件失败: %w", err)
		}
		return path, nil
	}

	return "", fmt.Errorf("无法为 %s 找到可用文件名 (已尝试 %d 次)", name, maxNameAttempts)
}
