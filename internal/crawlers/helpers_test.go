package crawlers

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// fakeResource 假HTTP客户端返回的资源
type fakeResource struct {
	body        string
	contentType string
	status      int
	err         error
}

// fakeClient 基于内存映射的HTTP客户端,记录每次调用
type fakeClient struct {
	mu        sync.Mutex
	resources map[string]fakeResource
	gets      []string
	heads     []string
}

func newFakeClient() *fakeClient {
	return &fakeClient{resources: make(map[string]fakeResource)}
}

func (c *fakeClient) page(url, html string) *fakeClient {
	c.resources[url] = fakeResource{body: html, contentType: "text/html; charset=utf-8"}
	return c
}

func (c *fakeClient) image(url, body, contentType string) *fakeClient {
	c.resources[url] = fakeResource{body: body, contentType: contentType}
	return c
}

func (c *fakeClient) fail(url string) *fakeClient {
	c.resources[url] = fakeResource{err: errors.New("connection refused")}
	return c
}

func (c *fakeClient) Get(_ context.Context, url string) (*models.Page, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets = append(c.gets, url)

	r, ok := c.resources[url]
	if !ok {
		return nil, models.NewCrawlError(models.KindFetchFailure, url, errors.New("HTTP 404 Not Found"))
	}
	if r.err != nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, url, r.err)
	}
	return &models.Page{
		URL:        url,
		FinalURL:   url,
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{r.contentType}},
		Body:       []byte(r.body),
	}, nil
}

func (c *fakeClient) Head(_ context.Context, url string) (*models.ProbeResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heads = append(c.heads, url)

	r, ok := c.resources[url]
	if !ok {
		return &models.ProbeResult{URL: url, StatusCode: http.StatusNotFound, Headers: http.Header{}}, nil
	}
	if r.err != nil {
		return nil, models.NewCrawlError(models.KindFetchFailure, url, r.err)
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &models.ProbeResult{
		URL:        url,
		StatusCode: status,
		Headers:    http.Header{"Content-Type": []string{r.contentType}},
	}, nil
}

func (c *fakeClient) getCount(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, u := range c.gets {
		if u == url {
			n++
		}
	}
	return n
}

func htmlPage(page *models.Page, body string) *models.Page {
	page.Body = []byte(body)
	page.Headers = http.Header{"Content-Type": []string{"text/html; charset=utf-8"}}
	return page
}
