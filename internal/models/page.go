package models

import (
	"mime"
	"net/http"
	"strings"
)

// Page 一次GET请求得到的页面
// 仅在处理该URL期间存在,处理完毕即丢弃
type Page struct {
	URL        string      // 请求的URL
	FinalURL   string      // 跟随重定向后的最终URL
	StatusCode int         // HTTP状态码
	Headers    http.Header // 响应头
	Body       []byte      // 响应体(已解压)
	Decoded    bool        // Body已按响应头中的charset转换为UTF-8
}

// ContentType 返回原始Content-Type头部
func (p *Page) ContentType() string {
	if p == nil || p.Headers == nil {
		return ""
	}
	return p.Headers.Get("Content-Type")
}

// MediaType 返回去掉参数并转为小写的媒体类型,如 "image/jpeg"
func (p *Page) MediaType() string {
	return ParseMediaType(p.ContentType())
}

// CharsetHint 返回HTML解析时用于判断编码的Content-Type
// Body已转换为UTF-8时返回固定的utf-8声明,避免按原charset重复解码
func (p *Page) CharsetHint() string {
	if p.Decoded {
		return "text/html; charset=utf-8"
	}
	return p.ContentType()
}

// BaseURL 返回解析相对链接时使用的基准URL
func (p *Page) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// ProbeResult HEAD探测结果
type ProbeResult struct {
	URL        string
	StatusCode int
	Headers    http.Header
}

// ContentType 返回探测到的Content-Type头部
func (r *ProbeResult) ContentType() string {
	if r == nil || r.Headers == nil {
		return ""
	}
	return r.Headers.Get("Content-Type")
}

// ParseMediaType 解析Content-Type,失败时退化为分号前的部分
func ParseMediaType(contentType string) string {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
