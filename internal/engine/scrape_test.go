package engine

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDocument(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSelectorChainFirst(t *testing.T) {
	doc := mustDocument(t, `<div><p class="b">second</p><p class="c">third</p></div>`)
	chain := selectorChain{".a", ".b", "p"}

	el := chain.first(doc.Selection)
	require.NotNil(t, el)
	assert.Equal(t, "second", el.Text())

	assert.Nil(t, selectorChain{".missing"}.first(doc.Selection))
	assert.Nil(t, selectorChain{}.first(doc.Selection))
}

func TestScrapeRuleCapsContainersBeforeFiltering(t *testing.T) {
	doc := mustDocument(t, `
<div class="item"><span>no link</span></div>
<div class="item"><a href="https://a.example/">A</a></div>
<div class="item"><a href="https://b.example/">B</a></div>`)
	rule := scrapeRule{engine: "test", container: ".item", link: selectorChain{"a"}}

	results := rule.extract(doc, 2)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Title)

	assert.Len(t, rule.extract(doc, 10), 2)
	assert.Empty(t, rule.extract(doc, 0))
}

func TestScrapeRuleIsolatesPanickingContainer(t *testing.T) {
	doc := mustDocument(t, `
<div class="item"><a href="boom">Bad</a></div>
<div class="item"><a href="https://ok.example/">Good</a></div>`)
	rule := scrapeRule{
		engine:    "test",
		container: ".item",
		link:      selectorChain{"a"},
		cleanURL: func(s string) string {
			if s == "boom" {
				panic("malformed")
			}
			return s
		},
	}

	results := rule.extract(doc, 10)
	require.Len(t, results, 1)
	assert.Equal(t, "https://ok.example/", results[0].URL)
}

func TestNewSearchResult(t *testing.T) {
	r, ok := NewSearchResult("Go", "https://go.dev", "")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"title": "Go", "url": "https://go.dev", "snippet": ""}, r.ToMap())

	_, ok = NewSearchResult("", "https://go.dev", "x")
	assert.False(t, ok)
	_, ok = NewSearchResult("Go", "", "x")
	assert.False(t, ok)
}
