package engine

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// newScrapeClient 创建模拟浏览器请求头的 HTTP 客户端
func newScrapeClient(opts Options, acceptLanguage string) *resty.Client {
	client := resty.New().
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8").
		SetHeader("Accept-Language", acceptLanguage).
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache").
		SetHeader("Sec-Fetch-Dest", "document").
		SetHeader("Sec-Fetch-Mode", "navigate").
		SetHeader("Sec-Fetch-Site", "none").
		SetHeader("Upgrade-Insecure-Requests", "1").
		SetTimeout(opts.timeout()).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetRetryCount(0)

	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}
	return client
}

// newAPIClient 创建调用 JSON API 的客户端
func newAPIClient(opts Options) *resty.Client {
	client := resty.New().
		SetHeader("Accept", "application/json").
		SetTimeout(opts.timeout()).
		SetRetryCount(0)

	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}
	return client
}

// fetchDocument 发起 GET 请求，非 2xx 视为失败，成功时解析为 HTML 文档
func fetchDocument(ctx context.Context, client *resty.Client, endpoint string, params map[string]string) (*goquery.Document, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}
	return doc, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
