package fetch

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 10 << 20
	userAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// HTTPOptions HTTP 下载配置
type HTTPOptions struct {
	ProxyURL     string
	Timeout      time.Duration
	MaxBodyBytes int64
}

// HTTPDownloader 直接通过 HTTP 下载网页
type HTTPDownloader struct {
	client  *resty.Client
	maxBody int64
}

// NewHTTPDownloader 创建 HTTP 下载器
func NewHTTPDownloader(opts HTTPOptions) *HTTPDownloader {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	client := resty.New().
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9,zh-CN;q=0.8").
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(10)).
		SetRetryCount(0)
	if opts.ProxyURL != "" {
		client.SetProxy(opts.ProxyURL)
	}

	return &HTTPDownloader{client: client, maxBody: maxBody}
}

// Download 下载网页，响应体超过上限时截断
func (d *HTTPDownloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := d.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrDownloadFailed, resp.StatusCode())
	}

	body, err := io.ReadAll(io.LimitReader(raw, d.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrDownloadFailed, err)
	}
	if int64(len(body)) > d.maxBody {
		log.Warn().Str("url", rawURL).Int64("limit", d.maxBody).Msg("response body truncated")
		body = body[:d.maxBody]
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty response body", ErrDownloadFailed)
	}
	return body, nil
}
