package crawlers

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Seen-UA", r.UserAgent())
		w.Write([]byte(`<html><body><a href="/next">next</a></body></html>`))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusFound)
	})
	mux.HandleFunc("/image", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		if r.Method == http.MethodHead {
			return
		}
		w.Write([]byte("jpeg-bytes"))
	})
	mux.HandleFunc("/big", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(bytes.Repeat([]byte("x"), 2*1024*1024))
	})
	mux.HandleFunc("/exact", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(bytes.Repeat([]byte("x"), 1024*1024))
	})
	mux.HandleFunc("/ua", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(r.UserAgent()))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testFetcher(headers models.HeaderProvider) *Fetcher {
	config := models.DefaultCrawlConfig()
	config.MaxBodySizeMB = 1
	return NewFetcher(config, headers)
}

func TestFetcher_Get(t *testing.T) {
	server := newTestServer(t)

	page, err := testFetcher(nil).Get(context.Background(), server.URL+"/page")
	if err != nil {
		t.Fatalf("GET失败: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("状态码期望200, 实际 %d", page.StatusCode)
	}
	if page.MediaType() != "text/html" {
		t.Errorf("媒体类型错误: %s", page.MediaType())
	}
	if !strings.Contains(string(page.Body), `href="/next"`) {
		t.Errorf("响应体错误: %s", page.Body)
	}
	if !page.Decoded {
		t.Error("带charset的页面应标记为已解码")
	}
}

func TestFetcher_FollowsRedirect(t *testing.T) {
	server := newTestServer(t)

	page, err := testFetcher(nil).Get(context.Background(), server.URL+"/old")
	if err != nil {
		t.Fatalf("GET失败: %v", err)
	}
	if page.FinalURL != server.URL+"/page" {
		t.Errorf("FinalURL期望 %s, 实际 %s", server.URL+"/page", page.FinalURL)
	}
	if page.BaseURL() != page.FinalURL {
		t.Error("BaseURL应使用重定向后的URL")
	}
}

func TestFetcher_GetNotFound(t *testing.T) {
	server := newTestServer(t)

	_, err := testFetcher(nil).Get(context.Background(), server.URL+"/missing")
	if !models.IsKind(err, models.KindFetchFailure) {
		t.Errorf("404应返回fetch_failure, 实际 %v", err)
	}
}

func TestFetcher_Head(t *testing.T) {
	server := newTestServer(t)
	fetcher := testFetcher(nil)

	result, err := fetcher.Head(context.Background(), server.URL+"/image")
	if err != nil {
		t.Fatalf("HEAD失败: %v", err)
	}
	if result.StatusCode != http.StatusOK || result.ContentType() != "image/jpeg; charset=binary" {
		t.Errorf("HEAD结果错误: %d %s", result.StatusCode, result.ContentType())
	}

	missing, err := fetcher.Head(context.Background(), server.URL+"/missing")
	if err != nil {
		t.Fatalf("HEAD 404不应返回错误: %v", err)
	}
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("状态码期望404, 实际 %d", missing.StatusCode)
	}
}

func TestFetcher_HeadersApplied(t *testing.T) {
	server := newTestServer(t)
	headers := models.StaticHeaders(http.Header{"User-Agent": []string{"ImgSpider-Test/1.0"}})

	page, err := testFetcher(headers).Get(context.Background(), server.URL+"/ua")
	if err != nil {
		t.Fatalf("GET失败: %v", err)
	}
	if string(page.Body) != "ImgSpider-Test/1.0" {
		t.Errorf("User-Agent未生效: %s", page.Body)
	}
}

func TestFetcher_BodyTooLarge(t *testing.T) {
	server := newTestServer(t)

	_, err := testFetcher(nil).Get(context.Background(), server.URL+"/big")
	if !models.IsKind(err, models.KindFetchFailure) {
		t.Errorf("超过大小上限应返回fetch_failure, 实际 %v", err)
	}

	// 恰好等于上限的响应体无法与截断区分
	_, err = testFetcher(nil).Get(context.Background(), server.URL+"/exact")
	if !models.IsKind(err, models.KindFetchFailure) {
		t.Errorf("达到大小上限应返回fetch_failure, 实际 %v", err)
	}
}

func TestFetcher_CancelledContext(t *testing.T) {
	server := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testFetcher(nil).Get(ctx, server.URL+"/page"); err == nil {
		t.Error("已取消的context应返回错误")
	}
}

func TestFetcher_WithImageClassifierAndDownloader(t *testing.T) {
	server := newTestServer(t)
	fetcher := testFetcher(nil)

	classifier := NewImageClassifier(fetcher)
	if !classifier.IsImage(context.Background(), server.URL+"/image") {
		t.Fatal("/image 应通过HEAD探测判定为图片")
	}

	dir := t.TempDir()
	file, err := NewImageDownloader(fetcher, NewDiskMonitor(0)).Download(context.Background(), server.URL+"/image", dir)
	if err != nil {
		t.Fatalf("下载失败: %v", err)
	}
	if file.FileName != "image.jpg" || file.Size != int64(len("jpeg-bytes")) {
		t.Errorf("下载结果错误: %+v", file)
	}
}

func TestDecompressResponse(t *testing.T) {
	plain := []byte("<html>压缩内容</html>")

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write(plain)
	gw.Close()

	var zl bytes.Buffer
	zw := zlib.NewWriter(&zl)
	zw.Write(plain)
	zw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write(plain)
	bw.Close()

	tests := []struct {
		name     string
		encoding string
		body     []byte
	}{
		{"gzip", "gzip", gz.Bytes()},
		{"gzip已被传输层解压", "gzip", plain},
		{"deflate(zlib)", "deflate", zl.Bytes()},
		{"brotli", "br", br.Bytes()},
		{"identity", "identity", plain},
		{"未知编码原样返回", "compress", plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decompressResponse(tt.encoding, tt.body)
			if err != nil {
				t.Fatalf("解压失败: %v", err)
			}
			if !bytes.Equal(got, plain) {
				t.Errorf("解压结果错误: %q", got)
			}
		})
	}
}
