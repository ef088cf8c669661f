package engine

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/textutil"
)

// selectorChain 按顺序尝试的 CSS 选择器，第一个有匹配的生效
type selectorChain []string

// first 返回第一个命中选择器的首个元素，全部未命中时返回 nil
func (c selectorChain) first(s *goquery.Selection) *goquery.Selection {
	for _, sel := range c {
		if found := s.Find(sel).First(); found.Length() > 0 {
			return found
		}
	}
	return nil
}

// scrapeRule 一个抓取引擎的结果提取规则
type scrapeRule struct {
	engine    string
	container string
	link      selectorChain
	snippet   selectorChain
	// cleanURL 可选，用于还原跳转链接
	cleanURL func(string) string
}

// extract 从文档中提取至多 limit 个结果
// 容器数量先按 limit 截断，再逐个解析；单个容器解析失败只跳过该容器
func (r scrapeRule) extract(doc *goquery.Document, limit int) []SearchResult {
	results := make([]SearchResult, 0, limit)

	containers := doc.Find(r.container)
	if containers.Length() > limit {
		containers = containers.Slice(0, limit)
	}

	containers.Each(func(i int, s *goquery.Selection) {
		if result, ok := r.extractOne(i, s); ok {
			results = append(results, result)
		}
	})
	return results
}

func (r scrapeRule) extractOne(i int, s *goquery.Selection) (result SearchResult, ok bool) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Debug().
				Str("engine", r.engine).
				Int("index", i).
				Interface("panic", rec).
				Msg("skipping malformed result container")
			result, ok = SearchResult{}, false
		}
	}()

	link := r.link.first(s)
	if link == nil {
		return SearchResult{}, false
	}

	title := textutil.CollapseWhitespace(link.Text())
	href, _ := link.Attr("href")
	href = strings.TrimSpace(href)
	if r.cleanURL != nil {
		href = r.cleanURL(href)
	}

	snippet := ""
	if el := r.snippet.first(s); el != nil {
		snippet = textutil.CleanSnippet(el.Text())
	}

	return NewSearchResult(title, href, snippet)
}
