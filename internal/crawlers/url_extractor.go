package crawlers

import (
	"net/url"
	"sort"
	"strings"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// LinkExtractor 链接与图片候选提取器
type LinkExtractor struct {
	parser ElementFinder
}

// NewLinkExtractor 创建提取器, parser为nil时使用HTMLParser
func NewLinkExtractor(parser ElementFinder) *LinkExtractor {
	if parser == nil {
		parser = NewHTMLParser()
	}
	return &LinkExtractor{parser: parser}
}

// ExtractLinks 提取页面中所有<a href>指向的规范化URL
// 跳过空值、纯锚点(#...)和javascript:伪链接;相对链接按RFC 3986基于baseURL解析。
// 结果去重并按字典序排序。单个href格式错误时静默跳过。
func (e *LinkExtractor) ExtractLinks(page *models.Page, baseURL string) []string {
	if page == nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	for _, href := range e.parser.FindElements(page.Body, page.CharsetHint(), "a", "href") {
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			continue
		}

		absolute, ok := resolveReference(base, href)
		if !ok {
			continue
		}

		normalized := NormalizeURL(absolute)
		if IsValidURL(normalized) {
			seen[normalized] = struct{}{}
		}
	}

	links := make([]string, 0, len(seen))
	for link := range seen {
		links = append(links, link)
	}
	sort.Strings(links)
	return links
}

// ExtractImageCandidates 提取页面中所有<img src>的绝对URL
// 保留query(CDN图片常依赖参数),只保留http/https,按文档顺序去重
func (e *LinkExtractor) ExtractImageCandidates(page *models.Page, baseURL string) []string {
	if page == nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var images []string
	for _, src := range e.parser.FindElements(page.Body, page.CharsetHint(), "img", "src") {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		absolute, ok := resolveReference(base, src)
		if !ok || !IsValidURL(absolute) {
			continue
		}
		if _, dup := seen[absolute]; dup {
			continue
		}
		seen[absolute] = struct{}{}
		images = append(images, absolute)
	}
	return images
}

// resolveReference 基于base解析相对引用
func resolveReference(base *url.URL, ref string) (string, bool) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(refURL).String(), true
}
