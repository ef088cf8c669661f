// Package fetch 下载网页并提取正文
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/textutil"
)

// Format 输出格式
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// Formats 支持的输出格式
var Formats = []Format{FormatMarkdown, FormatText, FormatHTML}

// ParseFormat 解析输出格式，空字符串视为 markdown
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatMarkdown, nil
	case FormatMarkdown, FormatText, FormatHTML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q, expected one of markdown, text, html", ErrInvalidFormat, s)
	}
}

// Options 单次抓取的提取参数
type Options struct {
	Format        Format
	IncludeLinks  bool
	IncludeImages bool
}

// Result 抓取结果
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Format  Format `json:"format"`
	// Length 为 Content 的字符数
	Length int `json:"length"`
}

// ErrorResult 抓取失败时输出的文档
type ErrorResult struct {
	Error   string `json:"error"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// NewErrorResult 构造错误文档
func NewErrorResult(err error, rawURL string) ErrorResult {
	return ErrorResult{Error: err.Error(), URL: rawURL}
}

// Downloader 下载网页 HTML
type Downloader interface {
	Download(ctx context.Context, rawURL string) ([]byte, error)
}

// Service 组合下载与正文提取
type Service struct {
	downloader Downloader
}

// NewService 创建抓取服务
func NewService(d Downloader) *Service {
	return &Service{downloader: d}
}

// Fetch 下载 rawURL 并按 opts 提取正文
func (s *Service) Fetch(ctx context.Context, rawURL string, opts Options) (*Result, error) {
	target, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = format
	// 纯文本不保留链接和图片
	if format == FormatText {
		opts.IncludeLinks = false
		opts.IncludeImages = false
	}

	body, err := s.downloader.Download(ctx, target.String())
	if err != nil {
		return nil, err
	}

	page, err := Extract(body, target, opts)
	if err != nil {
		return nil, err
	}

	domain, _ := textutil.ExtractDomain(target.String())
	log.Debug().
		Str("domain", domain).
		Str("format", string(format)).
		Int("bytes", len(body)).
		Msg("page extracted")

	return &Result{
		URL:     rawURL,
		Title:   page.Title,
		Content: page.Content,
		Format:  format,
		Length:  utf8.RuneCountInString(page.Content),
	}, nil
}

// ValidateURL 校验并解析 http(s) URL
func ValidateURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: url must not be empty", ErrInvalidURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}
