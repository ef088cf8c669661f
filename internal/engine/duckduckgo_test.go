package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-web-search/internal/ddgs"
)

type fakeSearcher struct {
	items []map[string]string
	err   error

	calls    int
	keywords string
	opts     ddgs.TextOptions
}

func (f *fakeSearcher) Text(ctx context.Context, keywords string, opts ddgs.TextOptions) ([]map[string]string, error) {
	f.calls++
	f.keywords = keywords
	f.opts = opts
	return f.items, f.err
}

func TestDuckDuckGoSearchMapsItems(t *testing.T) {
	searcher := &fakeSearcher{items: []map[string]string{
		{"title": " Go ", "href": "https://go.dev/", "body": " The Go language "},
		{"title": "Legacy", "link": "https://legacy.example/", "body": "<b>old</b> field &amp; markup"},
		{"title": "", "href": "https://untitled.example/"},
		{"title": "No link"},
		{"title": "Both", "href": "https://href.example/", "link": "https://link.example/"},
	}}
	e := NewDuckDuckGoEngineWithSearcher(searcher, DuckDuckGoConfig{Region: "us-en"})

	results, err := e.Search(context.Background(), "golang", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, SearchResult{Title: "Go", URL: "https://go.dev/", Snippet: "The Go language"}, results[0])
	assert.Equal(t, "https://legacy.example/", results[1].URL)
	assert.Equal(t, "old field & markup", results[1].Snippet)
	assert.Equal(t, "https://href.example/", results[2].URL)

	assert.Equal(t, "golang", searcher.keywords)
	assert.Equal(t, ddgs.BackendHTML, searcher.opts.Backend)
	assert.Equal(t, 10, searcher.opts.MaxResults)
	assert.Equal(t, "us-en", searcher.opts.Region)
}

func TestDuckDuckGoSearchCapsResults(t *testing.T) {
	items := make([]map[string]string, 0, 80)
	for i := 0; i < 80; i++ {
		items = append(items, map[string]string{
			"title": fmt.Sprintf("r%d", i),
			"href":  fmt.Sprintf("https://example.com/%d", i),
		})
	}
	searcher := &fakeSearcher{items: items}
	e := NewDuckDuckGoEngineWithSearcher(searcher, DuckDuckGoConfig{})

	results, err := e.Search(context.Background(), "q", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = e.Search(context.Background(), "q", 1000)
	require.NoError(t, err)
	assert.Len(t, results, 50)
	assert.Equal(t, 50, searcher.opts.MaxResults)
}

func TestDuckDuckGoSearchZeroCount(t *testing.T) {
	searcher := &fakeSearcher{}
	e := NewDuckDuckGoEngineWithSearcher(searcher, DuckDuckGoConfig{})

	results, err := e.Search(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, searcher.calls)
}

func TestDuckDuckGoSearchFeatureUnavailable(t *testing.T) {
	t.Run("no library", func(t *testing.T) {
		e := NewDuckDuckGoEngineWithSearcher(nil, DuckDuckGoConfig{})
		_, err := e.Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, ErrFeatureUnavailable)
	})

	t.Run("unsupported backend", func(t *testing.T) {
		e := NewDuckDuckGoEngineWithSearcher(ddgs.New(), DuckDuckGoConfig{Backend: "api"})
		_, err := e.Search(context.Background(), "q", 5)
		assert.ErrorIs(t, err, ErrFeatureUnavailable)
		assert.ErrorIs(t, err, ddgs.ErrUnsupportedBackend)
	})
}

func TestDuckDuckGoSearchDegradesOnRuntimeError(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection reset")}
	e := NewDuckDuckGoEngineWithSearcher(searcher, DuckDuckGoConfig{})

	results, err := e.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestDuckDuckGoSearchWithLibraryClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "golang", r.URL.Query().Get("q"))
		io.WriteString(w, `<div class="result"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2F&amp;rut=x">The Go Programming Language</a>
<a class="result__snippet">Build simple, secure, scalable systems.</a></div>`)
	}))
	defer srv.Close()

	client := ddgs.New(ddgs.WithEndpoints(srv.URL, ""), ddgs.WithMaxPages(1))
	e := NewDuckDuckGoEngineWithSearcher(client, DuckDuckGoConfig{})

	results, err := e.Search(context.Background(), "golang", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SearchResult{
		Title:   "The Go Programming Language",
		URL:     "https://go.dev/",
		Snippet: "Build simple, secure, scalable systems.",
	}, results[0])
	assert.Equal(t, "duckduckgo", e.Name())
}
