package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const (
	googleSearchURL = "https://www.googleapis.com/customsearch/v1"
	// Custom Search API 单页最多返回 10 条
	googlePageSize = 10

	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGoogleCX     = "GOOGLE_CX_ID"
)

// googleResponse Custom Search JSON API 响应中用到的部分
type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Queries map[string]json.RawMessage `json:"queries"`
}

// GoogleEngine Google Custom Search API 搜索引擎
type GoogleEngine struct {
	client  *resty.Client
	apiKey  string
	cx      string
	baseURL string
}

// NewGoogleEngine 创建 Google 搜索引擎实例，缺少 API Key 或 CX 时返回 ErrMissingCredentials
func NewGoogleEngine(opts Options) (*GoogleEngine, error) {
	apiKey := strings.TrimSpace(opts.Google.APIKey)
	cx := strings.TrimSpace(opts.Google.CX)
	if apiKey == "" || cx == "" {
		return nil, fmt.Errorf("%w: google engine requires an API key and a CX id; "+
			"set %s and %s, get an API key at https://console.cloud.google.com/ "+
			"and create a search engine for the CX id at https://programmablesearchengine.google.com/",
			ErrMissingCredentials, EnvGoogleAPIKey, EnvGoogleCX)
	}

	baseURL := opts.Google.BaseURL
	if baseURL == "" {
		baseURL = googleSearchURL
	}

	return &GoogleEngine{
		client:  newAPIClient(opts),
		apiKey:  apiKey,
		cx:      cx,
		baseURL: baseURL,
	}, nil
}

// Name 返回引擎名称
func (e *GoogleEngine) Name() string {
	return "google"
}

// Search 执行 Google 搜索
// 任意一页失败都会丢弃本次已累积的结果并返回空切片
func (e *GoogleEngine) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	limit := clamp(numResults, maxGoogleResults)

	results, err := e.searchPages(ctx, query, limit)
	if err != nil {
		log.Warn().Err(err).Str("engine", e.Name()).Str("query", query).Msg("search failed")
		return []SearchResult{}, nil
	}

	log.Debug().Str("engine", e.Name()).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// searchPages 顺序请求各页，直到取满或没有下一页
func (e *GoogleEngine) searchPages(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	results := make([]SearchResult, 0, limit)
	pages := (limit + googlePageSize - 1) / googlePageSize

	for i := 0; i < pages; i++ {
		start := i*googlePageSize + 1
		num := min(googlePageSize, limit-i*googlePageSize)

		items, hasNext, err := e.searchPage(ctx, query, start, num)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		results = append(results, items...)

		if !hasNext {
			break
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// searchPage 请求单页结果，返回该页结果以及是否还有下一页
func (e *GoogleEngine) searchPage(ctx context.Context, query string, start, num int) ([]SearchResult, bool, error) {
	resp, err := e.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":   e.apiKey,
			"cx":    e.cx,
			"q":     query,
			"num":   strconv.Itoa(num),
			"start": strconv.Itoa(start),
		}).
		Get(e.baseURL)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %s", e.redact(err.Error()))
	}
	if !isSuccess(resp.StatusCode()) {
		return nil, false, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var data googleResponse
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		return nil, false, fmt.Errorf("decode response failed: %w", err)
	}

	results := make([]SearchResult, 0, len(data.Items))
	for _, item := range data.Items {
		if result, ok := NewSearchResult(item.Title, item.Link, item.Snippet); ok {
			results = append(results, result)
		}
	}

	_, hasNext := data.Queries["nextPage"]
	return results, hasNext, nil
}

// redact 隐去文本中的 API Key
// 传输错误里带着完整 URL，其中的 Key 是转义后的形式
func (e *GoogleEngine) redact(text string) string {
	text = strings.ReplaceAll(text, url.QueryEscape(e.apiKey), "***")
	return strings.ReplaceAll(text, e.apiKey, "***")
}
