package models

import (
	"errors"
	"fmt"
)

// ErrorKind 爬取错误分类
type ErrorKind string

const (
	// KindInvalidURL URL格式错误或非http(s)协议,在任何I/O之前发现
	KindInvalidURL ErrorKind = "invalid_url"

	// KindFetchFailure GET/HEAD网络错误、超时或HTTP错误
	KindFetchFailure ErrorKind = "fetch_failure"

	// KindDownloadWriteFailure 保存图片时的文件系统错误
	KindDownloadWriteFailure ErrorKind = "download_write_failure"

	// KindClassificationAmbiguous HEAD探测无结论,按"非图片"处理,不向上传播
	KindClassificationAmbiguous ErrorKind = "classification_ambiguous"
)

// CrawlError 爬取过程中的错误
type CrawlError struct {
	Kind  ErrorKind
	URL   string
	Cause error
}

// NewCrawlError 创建爬取错误
func NewCrawlError(kind ErrorKind, url string, cause error) *CrawlError {
	return &CrawlError{Kind: kind, URL: url, Cause: cause}
}

// Error 实现error接口
func (e *CrawlError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s [%s]", e.Kind, e.URL)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Kind, e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *CrawlError) Unwrap() error {
	return e.Cause
}

// IsKind 判断错误链中是否包含指定分类的CrawlError
func IsKind(err error, kind ErrorKind) bool {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind == kind
	}
	return false
}

// KindOf 返回错误分类,非CrawlError返回空字符串
func KindOf(err error) ErrorKind {
	var ce *CrawlError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
