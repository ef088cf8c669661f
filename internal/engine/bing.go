package engine

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const bingSearchURL = "https://www.bing.com/search"

var bingRule = scrapeRule{
	engine:    "bing",
	container: ".b_algo",
	link:      selectorChain{"h2 a", ".b_title a"},
	snippet:   selectorChain{".b_caption p", ".b_algoSlug", "p"},
}

// BingEngine Bing 搜索引擎实现
type BingEngine struct {
	client  *resty.Client
	baseURL string
}

// NewBingEngine 创建 Bing 搜索引擎实例
func NewBingEngine(opts Options) *BingEngine {
	return &BingEngine{
		client:  newScrapeClient(opts, "en-US,en;q=0.9"),
		baseURL: bingSearchURL,
	}
}

// Name 返回引擎名称
func (e *BingEngine) Name() string {
	return "bing"
}

// Search 执行 Bing 搜索
func (e *BingEngine) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	limit := clamp(numResults, maxScrapeResults)
	if limit == 0 {
		return []SearchResult{}, nil
	}

	doc, err := fetchDocument(ctx, e.client, e.baseURL, map[string]string{
		"q":       query,
		"count":   strconv.Itoa(limit),
		"setlang": "en",
	})
	if err != nil {
		log.Warn().Err(err).Str("engine", e.Name()).Str("query", query).Msg("search failed")
		return []SearchResult{}, nil
	}

	results := bingRule.extract(doc, limit)
	log.Debug().Str("engine", e.Name()).Int("results", len(results)).Msg("search completed")
	return results, nil
}
