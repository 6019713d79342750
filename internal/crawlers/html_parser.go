package crawlers

import (
	"bytes"
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// ElementFinder 从HTML文档中提取指定标签的属性值
type ElementFinder interface {
	FindElements(body []byte, contentType, tag, attr string) []string
}

// HTMLParser 基于goquery的HTML解析器
type HTMLParser struct{}

// NewHTMLParser 创建HTML解析器
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{}
}

// FindElements 按文档顺序返回所有 tag[attr] 元素的属性值
// contentType 用于确定页面编码,为空时根据<meta>或内容推断。解析失败返回空结果。
func (p *HTMLParser) FindElements(body []byte, contentType, tag, attr string) []string {
	if len(body) == 0 {
		return nil
	}

	var reader io.Reader = bytes.NewReader(body)
	if r, err := charset.NewReader(reader, contentType); err == nil {
		reader = r
	} else {
		utils.Debugf("无法识别页面编码,按UTF-8解析: %v", err)
		reader = bytes.NewReader(body)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		utils.Debugf("解析HTML失败: %v", err)
		return nil
	}

	var values []string
	doc.Find(tag + "[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr(attr); ok {
			values = append(values, v)
		}
	})
	return values
}
