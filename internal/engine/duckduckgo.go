package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/ddgs"
	"github.com/cliffyan/go-web-search/internal/textutil"
)

// TextSearcher DuckDuckGo 搜索库的最小接口
type TextSearcher interface {
	Text(ctx context.Context, keywords string, opts ddgs.TextOptions) ([]map[string]string, error)
}

// DuckDuckGoEngine 基于 ddgs 搜索库的 DuckDuckGo 引擎
type DuckDuckGoEngine struct {
	searcher TextSearcher
	backend  ddgs.Backend
	region   string
}

// NewDuckDuckGoEngine 创建 DuckDuckGo 搜索引擎实例，默认使用 html 后端
func NewDuckDuckGoEngine(opts Options) *DuckDuckGoEngine {
	client := ddgs.New(
		ddgs.WithProxy(opts.ProxyURL),
		ddgs.WithTimeout(opts.timeout()),
	)
	return NewDuckDuckGoEngineWithSearcher(client, opts.DuckDuckGo)
}

// NewDuckDuckGoEngineWithSearcher 使用指定的搜索库实现创建引擎
func NewDuckDuckGoEngineWithSearcher(searcher TextSearcher, cfg DuckDuckGoConfig) *DuckDuckGoEngine {
	backend := ddgs.Backend(strings.ToLower(strings.TrimSpace(cfg.Backend)))
	if backend == "" {
		backend = ddgs.BackendHTML
	}
	return &DuckDuckGoEngine{
		searcher: searcher,
		backend:  backend,
		region:   cfg.Region,
	}
}

// Name 返回引擎名称
func (e *DuckDuckGoEngine) Name() string {
	return "duckduckgo"
}

// Search 执行 DuckDuckGo 搜索
// 搜索库缺失或后端不受支持时返回 ErrFeatureUnavailable，其余错误降级为空结果
func (e *DuckDuckGoEngine) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("%w: duckduckgo search library is not configured", ErrFeatureUnavailable)
	}

	limit := clamp(numResults, maxScrapeResults)
	if limit == 0 {
		return []SearchResult{}, nil
	}

	items, err := e.searcher.Text(ctx, query, ddgs.TextOptions{
		Backend:    e.backend,
		MaxResults: limit,
		Region:     e.region,
	})
	if err != nil {
		if errors.Is(err, ddgs.ErrUnsupportedBackend) {
			return nil, fmt.Errorf("%w: %w", ErrFeatureUnavailable, err)
		}
		log.Warn().Err(err).Str("engine", e.Name()).Str("query", query).Msg("search failed")
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(items))
	for _, item := range items {
		if len(results) >= limit {
			break
		}

		// 新版搜索库使用 href，旧版使用 link
		link := item["href"]
		if link == "" {
			link = item["link"]
		}

		// body 可能带有 <b> 等高亮标记
		if result, ok := NewSearchResult(strings.TrimSpace(item["title"]), link, textutil.CleanHTML(item["body"])); ok {
			results = append(results, result)
		}
	}

	log.Debug().Str("engine", e.Name()).Int("results", len(results)).Msg("search completed")
	return results, nil
}
