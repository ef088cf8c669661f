// Package ddgs is a small DuckDuckGo keyword-search library.
//
// It talks to the public HTML endpoints of DuckDuckGo and returns loosely typed
// items keyed by "title", "href" and "body". Callers pick a backend mode; the
// html backend is the most stable one.
package ddgs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultHTMLURL  = "https://html.duckduckgo.com/html/"
	defaultLiteURL  = "https://lite.duckduckgo.com/lite/"
	defaultRegion   = "wt-wt"
	defaultTimeout  = 15 * time.Second
	defaultMaxPages = 5
	userAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Backend 搜索后端模式
type Backend string

const (
	BackendAuto Backend = "auto"
	BackendHTML Backend = "html"
	BackendLite Backend = "lite"
)

var (
	// ErrUnsupportedBackend 请求了库不支持的后端
	ErrUnsupportedBackend = errors.New("ddgs: unsupported backend")
	// ErrRateLimited DuckDuckGo 返回 202，表示触发限流
	ErrRateLimited = errors.New("ddgs: rate limited")
	// ErrEmptyKeywords 关键词为空
	ErrEmptyKeywords = errors.New("ddgs: keywords must not be empty")
)

// ParseBackend 解析后端名称，未知名称返回 ErrUnsupportedBackend
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BackendHTML, nil
	case BackendAuto, BackendHTML, BackendLite:
		return b, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedBackend, name)
	}
}

// TextOptions 文本搜索参数
type TextOptions struct {
	Backend Backend
	// MaxResults <= 0 时只取第一页
	MaxResults int
	Region     string
}

// Client DuckDuckGo 搜索客户端
type Client struct {
	http     *resty.Client
	htmlURL  string
	liteURL  string
	maxPages int
}

// Option 客户端配置项
type Option func(*Client)

// WithProxy 使用代理
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		if proxyURL != "" {
			c.http.SetProxy(proxyURL)
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithEndpoints 覆盖 html / lite 端点，空字符串保持默认
func WithEndpoints(htmlURL, liteURL string) Option {
	return func(c *Client) {
		if htmlURL != "" {
			c.htmlURL = htmlURL
		}
		if liteURL != "" {
			c.liteURL = liteURL
		}
	}
}

// WithMaxPages 限制 html 后端翻页次数
func WithMaxPages(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// New 创建客户端
func New(opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
			SetHeader("Accept-Language", "en-US,en;q=0.9").
			SetTimeout(defaultTimeout).
			SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
			SetRetryCount(0),
		htmlURL:  defaultHTMLURL,
		liteURL:  defaultLiteURL,
		maxPages: defaultMaxPages,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text 执行关键词搜索
func (c *Client) Text(ctx context.Context, keywords string, opts TextOptions) ([]map[string]string, error) {
	if strings.TrimSpace(keywords) == "" {
		return nil, ErrEmptyKeywords
	}

	backend, err := ParseBackend(string(opts.Backend))
	if err != nil {
		return nil, err
	}
	region := opts.Region
	if region == "" {
		region = defaultRegion
	}

	switch backend {
	case BackendHTML:
		return c.textHTML(ctx, keywords, region, opts.MaxResults)
	case BackendLite:
		return c.textLite(ctx, keywords, region, opts.MaxResults)
	default:
		items, err := c.textHTML(ctx, keywords, region, opts.MaxResults)
		if err == nil && len(items) > 0 {
			return items, nil
		}
		log.Debug().Err(err).Str("keywords", keywords).Msg("ddgs html backend empty, trying lite")
		return c.textLite(ctx, keywords, region, opts.MaxResults)
	}
}

// get 发起 GET 请求并返回响应体
func (c *Client) get(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusAccepted {
		return nil, ErrRateLimited
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}
	return resp.Body(), nil
}

// item 构造结果项
func item(title, href, body string) map[string]string {
	return map[string]string{
		"title": title,
		"href":  href,
		"body":  body,
	}
}
