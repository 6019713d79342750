package crawlers

import (
	"context"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// HeadProber 发送HEAD请求(跟随重定向)
type HeadProber interface {
	Head(ctx context.Context, rawURL string) (*models.ProbeResult, error)
}

// ImageClassifier 图片判定器
// 先按扩展名判断,命中时不发起任何请求;否则用HEAD探测Content-Type
type ImageClassifier struct {
	prober HeadProber
	probes atomic.Int64
}

// NewImageClassifier 创建图片判定器
func NewImageClassifier(prober HeadProber) *ImageClassifier {
	return &ImageClassifier{prober: prober}
}

// IsImage 判断候选URL是否为图片
// 探测失败或结果不明确时视为非图片,不返回错误
func (c *ImageClassifier) IsImage(ctx context.Context, candidateURL string) bool {
	if HasImageExtension(candidateURL) {
		return true
	}

	if c.prober == nil {
		return false
	}

	c.probes.Add(1)
	result, err := c.prober.Head(ctx, candidateURL)
	if err != nil {
		utils.Debugf("🔎 %s: HEAD探测失败 [%s]: %v", models.KindClassificationAmbiguous, candidateURL, err)
		return false
	}

	if result.StatusCode != 200 {
		utils.Debugf("🔎 %s: HEAD状态码 %d [%s]", models.KindClassificationAmbiguous, result.StatusCode, candidateURL)
		return false
	}

	if !IsImageContentType(result.ContentType()) {
		utils.Debugf("🔎 非图片Content-Type %q [%s]", result.ContentType(), candidateURL)
		return false
	}
	return true
}

// ProbeCount 返回已发起的HEAD探测次数
func (c *ImageClassifier) ProbeCount() int {
	return int(c.probes.Load())
}

// HasImageExtension 判断URL路径(转小写)是否以已知图片扩展名结尾
func HasImageExtension(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(u.Path)
	for _, ext := range models.ImageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// IsImageContentType Content-Type(大小写不敏感)是否包含已认可的图片类型
func IsImageContentType(contentType string) bool {
	contentType = strings.ToLower(contentType)
	for _, t := range models.ImageContentTypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
