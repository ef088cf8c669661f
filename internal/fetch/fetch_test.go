package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articleFixture = `<html><head><title>Fallback Title</title>
<meta property="og:title" content="Go   Guide">
<style>.hidden { display: none }</style></head>
<body>
<nav><a href="/home">Home</a></nav>
<header><div>Site banner</div></header>
<article>
<h1>Getting Started</h1>
<p>Read the <a href="/doc/install">install guide</a> first.</p>
<p><img src="/img/gopher.png" alt="gopher"></p>
<table><tr><th>Name</th><th>Value</th></tr><tr><td>go</td><td>1.24</td></tr></table>
<script>var tracking = 1;</script>
</article>
<footer>Copyright notice</footer>
</body></html>`

func newFixtureServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchText(t *testing.T) {
	srv := newFixtureServer(t, articleFixture)
	svc := NewService(NewHTTPDownloader(HTTPOptions{}))

	res, err := svc.Fetch(context.Background(), srv.URL+"/guide", Options{
		Format:        FormatText,
		IncludeLinks:  true,
		IncludeImages: true,
	})
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/guide", res.URL)
	assert.Equal(t, "Go Guide", res.Title)
	assert.Equal(t, FormatText, res.Format)
	assert.Contains(t, res.Content, "Getting Started")
	assert.Contains(t, res.Content, "Read the install guide first.")
	assert.Contains(t, res.Content, "Name\tValue")
	assert.Contains(t, res.Content, "go\t1.24")
	for _, unwanted := range []string{"Home", "Site banner", "Copyright", "tracking", "gopher.png", "/doc/install"} {
		assert.NotContains(t, res.Content, unwanted)
	}
	assert.Equal(t, len([]rune(res.Content)), res.Length)
}

func TestFetchMarkdown(t *testing.T) {
	srv := newFixtureServer(t, articleFixture)
	svc := NewService(NewHTTPDownloader(HTTPOptions{}))

	t.Run("with links and images", func(t *testing.T) {
		res, err := svc.Fetch(context.Background(), srv.URL+"/guide", Options{
			Format:        FormatMarkdown,
			IncludeLinks:  true,
			IncludeImages: true,
		})
		require.NoError(t, err)
		assert.Equal(t, FormatMarkdown, res.Format)
		assert.Contains(t, res.Content, "# Getting Started")
		assert.Contains(t, res.Content, "[install guide]("+srv.URL+"/doc/install)")
		assert.Contains(t, res.Content, "![gopher]("+srv.URL+"/img/gopher.png)")
		assert.Contains(t, res.Content, "| Name | Value |")
		assert.NotContains(t, res.Content, "Copyright")
	})

	t.Run("plain", func(t *testing.T) {
		res, err := svc.Fetch(context.Background(), srv.URL+"/guide", Options{})
		require.NoError(t, err)
		assert.Equal(t, FormatMarkdown, res.Format)
		assert.Contains(t, res.Content, "install guide")
		assert.NotContains(t, res.Content, "/doc/install")
		assert.NotContains(t, res.Content, "gopher.png")
		assert.Contains(t, res.Content, "Name")
	})
}

func TestFetchHTML(t *testing.T) {
	srv := newFixtureServer(t, articleFixture)
	svc := NewService(NewHTTPDownloader(HTTPOptions{}))

	res, err := svc.Fetch(context.Background(), srv.URL, Options{Format: FormatHTML, IncludeLinks: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Content, "<article>"))
	assert.Contains(t, res.Content, "<table>")
	assert.Contains(t, res.Content, `href="`+srv.URL+`/doc/install"`)
	assert.NotContains(t, res.Content, "<script>")
	assert.NotContains(t, res.Content, "<img")
}

func TestFetchLengthCountsCharacters(t *testing.T) {
	srv := newFixtureServer(t, `<html><head><title>中文</title></head><body><p>你好，世界</p></body></html>`)
	svc := NewService(NewHTTPDownloader(HTTPOptions{}))

	res, err := svc.Fetch(context.Background(), srv.URL, Options{Format: FormatText})
	require.NoError(t, err)
	assert.Equal(t, "中文", res.Title)
	assert.Equal(t, "你好，世界", res.Content)
	assert.Equal(t, 5, res.Length)
}

func TestFetchTitleFallbacks(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"og title", `<head><meta property="og:title" content="OG"><title>T</title></head><body><h1>H</h1></body>`, "OG"},
		{"title element", `<head><title> Page  Title </title></head><body><h1>H</h1></body>`, "Page Title"},
		{"first heading", `<body><h1>Heading</h1><h1>Second</h1></body>`, "Heading"},
		{"none", `<body><p>text</p></body>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Extract([]byte(tt.html), nil, Options{Format: FormatText})
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.Title)
		})
	}
}

func TestFetchValidation(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
	}))
	defer srv.Close()
	svc := NewService(NewHTTPDownloader(HTTPOptions{}))

	for _, raw := range []string{"", "   ", "example.com", "ftp://example.com/file", "http://"} {
		_, err := svc.Fetch(context.Background(), raw, Options{})
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}

	_, err := svc.Fetch(context.Background(), srv.URL, Options{Format: "pdf"})
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Zero(t, atomic.LoadInt32(&requests))
}

func TestHTTPDownloaderFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/empty":
		default:
			io.WriteString(w, strings.Repeat("a", 100))
		}
	}))
	defer srv.Close()

	d := NewHTTPDownloader(HTTPOptions{MaxBodyBytes: 10})

	_, err := d.Download(context.Background(), srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrDownloadFailed)
	assert.Contains(t, err.Error(), "404")

	_, err = d.Download(context.Background(), srv.URL+"/empty")
	assert.ErrorIs(t, err, ErrDownloadFailed)

	body, err := d.Download(context.Background(), srv.URL+"/big")
	require.NoError(t, err)
	assert.Len(t, body, 10)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "Markdown": FormatMarkdown, " text ": FormatText, "html": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("xml")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
