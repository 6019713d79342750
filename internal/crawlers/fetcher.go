package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// Fetcher 基于Colly的HTTP抓取器, 提供GET和HEAD
// 使用同步collector,允许重复访问同一URL(去重由爬取引擎负责),忽略robots.txt
type Fetcher struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
	maxBodySize    int
}

// NewFetcher 创建抓取器
func NewFetcher(config models.CrawlConfig, headerProvider models.HeaderProvider) *Fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
		colly.ParseHTTPErrorResponse(),
		colly.MaxBodySize(config.MaxBodySize()),
	)

	c.SetRequestTimeout(config.RequestTimeout())

	if config.InsecureSkipVerify {
		c.WithTransport(&http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true,
			},
		})
		utils.Warnf("⚠️  已禁用TLS证书验证")
	}

	utils.Debugf("抓取器: 超时 %v, 响应体上限 %d 字节", config.RequestTimeout(), config.MaxBodySize())

	return &Fetcher{
		collector:      c,
		headerProvider: headerProvider,
		maxBodySize:    config.MaxBodySize(),
	}
}

// Get 发送GET请求并返回完整页面
// 非2xx状态码、超时、连接失败以及响应体被截断都返回KindFetchFailure错误
func (f *Fetcher) Get(ctx context.Context, rawURL string) (*models.Page, error) {
	resp, err := f.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewCrawlError(models.KindFetchFailure, rawURL,
			fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	// colly 在达到 MaxBodySize 时静默截断, 恰好等于上限的响应体无法与截断区分, 一律按截断处理
	if f.maxBodySize > 0 && len(resp.Body) >= f.maxBodySize {
		return nil, models.NewCrawlError(models.KindFetchFailure, rawURL,
			fmt.Errorf("响应体达到大小上限 %d 字节,已截断", f.maxBodySize))
	}

	headers := http.Header{}
	if resp.Headers != nil {
		headers = resp.Headers.Clone()
	}

	body := resp.Body
	if encoding := headers.Get("Content-Encoding"); encoding != "" {
		decoded, err := decompressResponse(encoding, body)
		if err != nil {
			utils.Warnf("解压响应失败 [%s] (编码=%s): %v", rawURL, encoding, err)
		} else {
			body = decoded
		}
	}

	return &models.Page{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		Body:       body,
		Decoded:    strings.Contains(strings.ToLower(headers.Get("Content-Type")), "charset"),
	}, nil
}

// Head 发送HEAD请求(跟随重定向), 任意状态码都作为结果返回
func (f *Fetcher) Head(ctx context.Context, rawURL string) (*models.ProbeResult, error) {
	resp, err := f.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	if resp.Headers != nil {
		headers = resp.Headers.Clone()
	}

	return &models.ProbeResult{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Headers:    headers,
	}, nil
}

// do 在collector的克隆上执行单个请求
// 克隆共享底层HTTP客户端,回调互不干扰
func (f *Fetcher) do(ctx context.Context, method, rawURL string) (*colly.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, rawURL, err)
	}

	c := f.collector.Clone()

	var (
		response *colly.Response
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		f.applyHeaders(r)
		utils.Debugf("%s %s", method, r.URL.String())
	})
	c.OnResponse(func(r *colly.Response) {
		response = r
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	var err error
	if method == http.MethodHead {
		err = c.Head(rawURL)
	} else {
		err = c.Visit(rawURL)
	}
	if err == nil {
		err = fetchErr
	}
	if err != nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, rawURL, err)
	}
	if response == nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, rawURL, fmt.Errorf("未收到响应"))
	}
	return response, nil
}

// applyHeaders 应用HeaderProvider提供的请求头
func (f *Fetcher) applyHeaders(r *colly.Request) {
	if f.headerProvider == nil {
		return
	}

	headers, err := f.headerProvider.GetHeaders()
	if err != nil {
		utils.Warnf("获取HTTP头部失败: %v", err)
		return
	}

	for name, values := range headers {
		if len(values) > 0 {
			r.Headers.Set(name, values[0])
		}
	}
}

// decompressResponse 根据Content-Encoding解压响应体
// gzip通常已由传输层解压,此时响应体不再以gzip魔数开头,原样返回
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip", "x-gzip":
		if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
			return body, nil
		}
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip读取失败: %w", err)
		}
		return decompressed, nil

	case "deflate":
		// 多数服务器发送zlib封装的deflate,少数发送裸deflate
		if reader, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			defer reader.Close()
			if decompressed, err := io.ReadAll(reader); err == nil {
				return decompressed, nil
			}
		}

		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("deflate读取失败: %w", err)
		}
		return decompressed, nil

	case "br":
		reader := brotli.NewReader(bytes.NewReader(body))
		decompressed, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("brotli读取失败: %w", err)
		}
		return decompressed, nil

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}
