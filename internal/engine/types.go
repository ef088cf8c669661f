package engine

import (
	"context"
	"time"
)

// SearchResult 搜索结果
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// NewSearchResult 构造搜索结果，标题或链接为空时返回 false
func NewSearchResult(title, url, snippet string) (SearchResult, bool) {
	if title == "" || url == "" {
		return SearchResult{}, false
	}
	return SearchResult{Title: title, URL: url, Snippet: snippet}, true
}

// ToMap 返回结果的规范映射形式
func (r SearchResult) ToMap() map[string]string {
	return map[string]string{
		"title":   r.Title,
		"url":     r.URL,
		"snippet": r.Snippet,
	}
}

// SearchEngine 搜索引擎接口
type SearchEngine interface {
	// Name 返回引擎名称
	Name() string
	// Search 执行搜索。普通的网络或解析失败返回空切片和 nil，
	// 只有功能不可用时才返回错误。
	Search(ctx context.Context, query string, numResults int) ([]SearchResult, error)
}

// Response 单次搜索的输出
type Response struct {
	Query   string         `json:"query"`
	Engine  string         `json:"engine"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// ErrorResponse 搜索失败时输出的文档
type ErrorResponse struct {
	Error   string         `json:"error"`
	Query   string         `json:"query"`
	Engine  string         `json:"engine"`
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// NewErrorResponse 构造错误文档，结果列表为空
func NewErrorResponse(err error, query, engineName string) ErrorResponse {
	return ErrorResponse{
		Error:   err.Error(),
		Query:   query,
		Engine:  engineName,
		Results: []SearchResult{},
	}
}

// GoogleConfig Google Custom Search 凭据
type GoogleConfig struct {
	APIKey  string
	CX      string
	BaseURL string
}

// DuckDuckGoConfig DuckDuckGo 引擎配置
type DuckDuckGoConfig struct {
	Backend string
	Region  string
}

// Options 构造引擎所需的全部配置
type Options struct {
	ProxyURL   string
	Timeout    time.Duration
	Google     GoogleConfig
	DuckDuckGo DuckDuckGoConfig
}

const (
	defaultTimeout = 15 * time.Second

	maxScrapeResults = 50
	maxGoogleResults = 100
)

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

// clamp 将请求数量限制在 [0, ceiling]
func clamp(n, ceiling int) int {
	if n < 0 {
		return 0
	}
	if n > ceiling {
		return ceiling
	}
	return n
}
