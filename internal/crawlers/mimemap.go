package crawlers

import (
	"github.com/gabriel-vasile/mimetype"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// ExtensionFor 根据Content-Type返回文件扩展名(含点),如 image/jpeg -> .jpg
// 忽略参数部分,大小写不敏感
func ExtensionFor(contentType string) (string, bool) {
	mediaType := models.ParseMediaType(contentType)
	if mediaType == "" {
		return "", false
	}

	m := mimetype.Lookup(mediaType)
	if m == nil || m.Extension() == "" {
		return "", false
	}
	return m.Extension(), true
}

// SniffExtension 根据内容探测扩展名, 无法识别时返回false
func SniffExtension(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}

	m := mimetype.Detect(body)
	if m == nil || m.Is("application/octet-stream") || m.Extension() == "" {
		return "", false
	}
	return m.Extension(), true
}

// needsSniff Content-Type缺失或为通用二进制类型时需要根据内容探测
func needsSniff(contentType string) bool {
	mediaType := models.ParseMediaType(contentType)
	return mediaType == "" || mediaType == "application/octet-stream"
}
