package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/engine"
	"github.com/cliffyan/go-web-search/internal/fetch"
)

const (
	MCPVersion = "2024-11-05"
)

// Searcher 按引擎名称执行搜索
type Searcher interface {
	Names() []string
	Search(ctx context.Context, engineName, query string, numResults int) (*engine.Response, error)
}

// Fetcher 抓取网页正文
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, opts fetch.Options) (*fetch.Result, error)
}

// Handler MCP 请求处理器
type Handler struct {
	config   *config.Config
	searcher Searcher
	fetcher  Fetcher
}

// NewHandler 创建 MCP 处理器
func NewHandler(cfg *config.Config, searcher Searcher, fetcher Fetcher) *Handler {
	return &Handler{
		config:   cfg,
		searcher: searcher,
		fetcher:  fetcher,
	}
}

// HandleRequest 处理 MCP JSON-RPC 请求
func (h *Handler) HandleRequest(ctx context.Context, req JSONRPCRequest) JSONRPCResponse {
	log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("mcp request")

	var result interface{}
	var err error

	switch req.Method {
	case "initialize":
		result = h.handleInitialize()
	case "notifications/initialized":
		// 通知没有响应体
		return JSONRPCResponse{}
	case "tools/list":
		result = ListToolsResult{Tools: GetTools(h.config, h.searcher.Names())}
	case "tools/call":
		result, err = h.handleToolsCall(ctx, req.Params)
	case "ping":
		result = struct{}{}
	case "resources/list":
		result = ListResourcesResult{Resources: []interface{}{}}
	case "prompts/list":
		result = ListPromptsResult{Prompts: []interface{}{}}
	default:
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: "unknown method: " + req.Method},
		}
	}

	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("mcp request failed")
		return JSONRPCResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &RPCError{
				Code:    CodeInvalidParams,
				Message: err.Error(),
			},
		}
	}

	return JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}
}

// handleInitialize 处理初始化请求
func (h *Handler) handleInitialize() InitializeResult {
	return InitializeResult{
		ProtocolVersion: MCPVersion,
		Capabilities: Capability{
			Tools: ToolCapability{ListChanged: false},
		},
		ServerInfo: ServerInfo{
			Name:    h.config.MCP.ServerName,
			Version: h.config.MCP.ServerVersion,
		},
	}
}

// handleToolsCall 处理工具调用请求
func (h *Handler) handleToolsCall(ctx context.Context, params interface{}) (*CallToolResult, error) {
	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var callParams CallToolParams
	if err := json.Unmarshal(paramsBytes, &callParams); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}

	log.Debug().Str("tool", callParams.Name).Interface("args", callParams.Arguments).Msg("tool call")

	switch callParams.Name {
	case h.config.MCP.Tools.SearchName:
		return h.handleSearch(ctx, callParams.Arguments), nil
	case h.config.MCP.Tools.FetchName:
		return h.handleFetch(ctx, callParams.Arguments), nil
	default:
		return textResult(fmt.Sprintf("Unknown tool: %s", callParams.Name), true), nil
	}
}

// handleSearch 执行搜索，结果与 websearch 命令输出相同
func (h *Handler) handleSearch(ctx context.Context, args map[string]interface{}) *CallToolResult {
	query, _ := args["query"].(string)

	engineName := h.config.Search.DefaultEngine
	if e, ok := args["engine"].(string); ok && e != "" {
		engineName = e
	}

	num := h.config.Search.DefaultNum
	if n, ok := args["num"].(float64); ok {
		num = int(n)
	}

	resp, err := h.searcher.Search(ctx, engineName, query, num)
	if err != nil {
		return jsonResult(engine.NewErrorResponse(err, query, engineName), true)
	}
	return jsonResult(resp, false)
}

// handleFetch 抓取网页，结果与 webfetch 命令输出相同
func (h *Handler) handleFetch(ctx context.Context, args map[string]interface{}) *CallToolResult {
	rawURL, _ := args["url"].(string)

	format := h.config.Fetch.Format
	if f, ok := args["format"].(string); ok && f != "" {
		format = f
	}
	parsed, err := fetch.ParseFormat(format)
	if err != nil {
		return jsonResult(fetch.NewErrorResult(err, rawURL), true)
	}

	includeLinks, _ := args["include_links"].(bool)
	includeImages, _ := args["include_images"].(bool)

	res, err := h.fetcher.Fetch(ctx, rawURL, fetch.Options{
		Format:        parsed,
		IncludeLinks:  includeLinks,
		IncludeImages: includeImages,
	})
	if err != nil {
		return jsonResult(fetch.NewErrorResult(err, rawURL), true)
	}
	return jsonResult(res, false)
}

func jsonResult(v interface{}, isError bool) *CallToolResult {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return textResult(fmt.Sprintf("Failed to format result: %v", err), true)
	}
	return textResult(string(bytes.TrimSpace(buf.Bytes())), isError)
}

func textResult(text string, isError bool) *CallToolResult {
	return &CallToolResult{
		Content: []ContentItem{{Type: "text", Text: text}},
		IsError: isError,
	}
}
