package models

import (
	"errors"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL 验证入口URL
// 返回的错误为 KindInvalidURL 分类的 CrawlError
func ValidateURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return NewCrawlError(KindInvalidURL, urlStr, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewCrawlError(KindInvalidURL, urlStr, errors.New("URL必须是HTTP或HTTPS协议"))
	}
	if parsed.Host == "" {
		return NewCrawlError(KindInvalidURL, urlStr, errors.New("URL必须包含主机名"))
	}
	return nil
}

// NewID 生成唯一ID
func NewID() string {
	return uuid.New().String()
}
