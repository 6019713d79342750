package crawlers

import (
	"net/url"
	"strings"
)

// IsValidURL 判断URL是否为带主机名的http/https地址
// 格式错误的输入返回false,不返回错误
func IsValidURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Hostname() != ""
}

// NormalizeURL 规范化URL: scheme://host[:port]path
// 去掉路径末尾的所有'/',丢弃query和fragment。结果幂等。
// 无法解析或缺少scheme/host的输入原样返回(去掉首尾空白),由IsValidURL拒绝
func NormalizeURL(rawURL string) string {
	trimmed := strings.TrimSpace(rawURL)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return trimmed
	}

	path := strings.TrimRight(u.EscapedPath(), "/")
	return u.Scheme + "://" + u.Host + path
}
