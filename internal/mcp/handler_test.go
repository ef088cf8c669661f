package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/engine"
	"github.com/cliffyan/go-web-search/internal/fetch"
)

type fakeSearcher struct {
	err error

	engine string
	query  string
	num    int
}

func (f *fakeSearcher) Names() []string { return []string{"duckduckgo", "bing", "baidu", "google"} }

func (f *fakeSearcher) Search(ctx context.Context, engineName, query string, numResults int) (*engine.Response, error) {
	f.engine, f.query, f.num = engineName, query, numResults
	if f.err != nil {
		return nil, f.err
	}
	return &engine.Response{
		Query:   query,
		Engine:  engineName,
		Count:   1,
		Results: []engine.SearchResult{{Title: "Go", URL: "https://go.dev/?a=1&b=2"}},
	}, nil
}

type fakeFetcher struct {
	opts fetch.Options
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error) {
	f.opts = opts
	if rawURL == "" {
		return nil, fetch.ErrInvalidURL
	}
	return &fetch.Result{URL: rawURL, Title: "T", Content: "body", Format: opts.Format, Length: 4}, nil
}

func newTestHandler() (*Handler, *fakeSearcher, *fakeFetcher) {
	cfg := *config.DefaultConfig
	s, f := &fakeSearcher{}, &fakeFetcher{}
	return NewHandler(&cfg, s, f), s, f
}

func callTool(t *testing.T, h *Handler, name string, args map[string]interface{}) *CallToolResult {
	t.Helper()
	resp := h.HandleRequest(context.Background(), JSONRPCRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  map[string]interface{}{"name": name, "arguments": args},
	})
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(*CallToolResult)
	require.True(t, ok)
	require.Len(t, result.Content, 1)
	return result
}

func TestHandleInitialize(t *testing.T) {
	h, _, _ := newTestHandler()

	resp := h.HandleRequest(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	assert.Equal(t, MCPVersion, result.ProtocolVersion)
	assert.Equal(t, "go-web-search", result.ServerInfo.Name)
}

func TestHandleToolsList(t *testing.T) {
	h, _, _ := newTestHandler()

	resp := h.HandleRequest(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	result, ok := resp.Result.(ListToolsResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 2)

	search := result.Tools[0]
	assert.Equal(t, "search", search.Name)
	assert.Equal(t, []string{"duckduckgo", "bing", "baidu", "google"}, search.InputSchema.Properties["engine"].Enum)
	assert.Equal(t, []string{"query"}, search.InputSchema.Required)

	fetchTool := result.Tools[1]
	assert.Equal(t, "fetch", fetchTool.Name)
	assert.Equal(t, []string{"markdown", "text", "html"}, fetchTool.InputSchema.Properties["format"].Enum)
	assert.Equal(t, []string{"url"}, fetchTool.InputSchema.Required)
}

func TestCallSearchTool(t *testing.T) {
	h, s, _ := newTestHandler()

	result := callTool(t, h, "search", map[string]interface{}{"query": "golang"})
	assert.False(t, result.IsError)
	assert.Equal(t, "google", s.engine)
	assert.Equal(t, 10, s.num)
	assert.Contains(t, result.Content[0].Text, "https://go.dev/?a=1&b=2")

	var resp engine.Response
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &resp))
	assert.Equal(t, "golang", resp.Query)

	callTool(t, h, "search", map[string]interface{}{"query": "golang", "engine": "bing", "num": float64(3)})
	assert.Equal(t, "bing", s.engine)
	assert.Equal(t, 3, s.num)
}

func TestCallSearchToolError(t *testing.T) {
	h, s, _ := newTestHandler()
	s.err = engine.ErrEmptyQuery

	result := callTool(t, h, "search", map[string]interface{}{"engine": "bing"})
	assert.True(t, result.IsError)

	var doc engine.ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &doc))
	assert.Equal(t, engine.ErrEmptyQuery.Error(), doc.Error)
	assert.Equal(t, "bing", doc.Engine)
	assert.NotNil(t, doc.Results)
}

func TestCallFetchTool(t *testing.T) {
	h, _, f := newTestHandler()

	result := callTool(t, h, "fetch", map[string]interface{}{
		"url":           "https://example.com",
		"format":        "text",
		"include_links": true,
	})
	assert.False(t, result.IsError)
	assert.Equal(t, fetch.FormatText, f.opts.Format)
	assert.True(t, f.opts.IncludeLinks)
	assert.False(t, f.opts.IncludeImages)

	var res fetch.Result
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &res))
	assert.Equal(t, "body", res.Content)

	result = callTool(t, h, "fetch", map[string]interface{}{"url": "https://example.com"})
	assert.False(t, result.IsError)
	assert.Equal(t, fetch.FormatMarkdown, f.opts.Format)
}

func TestCallFetchToolErrors(t *testing.T) {
	h, _, _ := newTestHandler()

	result := callTool(t, h, "fetch", map[string]interface{}{"url": "https://example.com", "format": "pdf"})
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "invalid output format")

	result = callTool(t, h, "fetch", map[string]interface{}{})
	assert.True(t, result.IsError)

	var doc fetch.ErrorResult
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &doc))
	assert.Equal(t, fetch.ErrInvalidURL.Error(), doc.Error)
	assert.Empty(t, doc.Content)
}

func TestHandleUnknownToolAndMethod(t *testing.T) {
	h, _, _ := newTestHandler()

	result := callTool(t, h, "translate", nil)
	assert.True(t, result.IsError)
	assert.Equal(t, "Unknown tool: translate", result.Content[0].Text)

	resp := h.HandleRequest(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 3, Method: "sampling/create"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)

	resp = h.HandleRequest(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 4, Method: "tools/call", Params: "bad"})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}
