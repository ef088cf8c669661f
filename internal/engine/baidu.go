package engine

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const baiduSearchURL = "https://www.baidu.com/s"

var baiduRule = scrapeRule{
	engine:    "baidu",
	container: ".result",
	link:      selectorChain{"h3 a", "a"},
	snippet:   selectorChain{".c-abstract", ".abstract", "div"},
	cleanURL:  cleanBaiduURL,
}

// BaiduEngine 百度搜索引擎实现
type BaiduEngine struct {
	client  *resty.Client
	baseURL string
}

// NewBaiduEngine 创建百度搜索引擎实例
func NewBaiduEngine(opts Options) *BaiduEngine {
	return &BaiduEngine{
		client:  newScrapeClient(opts, "zh-CN,zh;q=0.9,en;q=0.8"),
		baseURL: baiduSearchURL,
	}
}

// Name 返回引擎名称
func (e *BaiduEngine) Name() string {
	return "baidu"
}

// Search 执行百度搜索
func (e *BaiduEngine) Search(ctx context.Context, query string, numResults int) ([]SearchResult, error) {
	limit := clamp(numResults, maxScrapeResults)
	if limit == 0 {
		return []SearchResult{}, nil
	}

	doc, err := fetchDocument(ctx, e.client, e.baseURL, map[string]string{
		"wd": query,
		"rn": strconv.Itoa(limit),
		"ie": "utf-8",
	})
	if err != nil {
		log.Warn().Err(err).Str("engine", e.Name()).Str("query", query).Msg("search failed")
		return []SearchResult{}, nil
	}

	results := baiduRule.extract(doc, limit)
	log.Debug().Str("engine", e.Name()).Int("results", len(results)).Msg("search completed")
	return results, nil
}

// cleanBaiduURL 还原百度跳转链接
// 只处理 baidu.com/link 和 baidu.com/s? 形式，取 url= 参数到下一个 & 为止并解码；
// 其余情况或解码失败时原样返回
func cleanBaiduURL(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "baidu.com/link") && !strings.Contains(raw, "baidu.com/s?") {
		return raw
	}

	start := strings.Index(raw, "url=")
	if start < 0 {
		return raw
	}
	value := raw[start+len("url="):]
	if end := strings.Index(value, "&"); end >= 0 {
		value = value[:end]
	}

	// PathUnescape 不会把 '+' 转成空格
	decoded, err := url.PathUnescape(value)
	if err != nil {
		return raw
	}
	return decoded
}
