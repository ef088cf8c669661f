package mcp

import (
	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/fetch"
)

// GetTools 获取所有 MCP 工具定义，engines 为可选的搜索引擎名称
func GetTools(cfg *config.Config, engines []string) []Tool {
	formats := make([]string, 0, len(fetch.Formats))
	for _, f := range fetch.Formats {
		formats = append(formats, string(f))
	}

	return []Tool{
		{
			Name:        cfg.MCP.Tools.SearchName,
			Description: cfg.MCP.Tools.SearchDescription,
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {
						Type:        "string",
						Description: "The search query string",
					},
					"engine": {
						Type:        "string",
						Description: "Search engine to use",
						Default:     cfg.Search.DefaultEngine,
						Enum:        engines,
					},
					"num": {
						Type:        "number",
						Description: "Number of results to return",
						Default:     cfg.Search.DefaultNum,
					},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        cfg.MCP.Tools.FetchName,
			Description: cfg.MCP.Tools.FetchDescription,
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"url": {
						Type:        "string",
						Description: "The http(s) URL of the page",
					},
					"format": {
						Type:        "string",
						Description: "Output format",
						Default:     cfg.Fetch.Format,
						Enum:        formats,
					},
					"include_links": {
						Type:        "boolean",
						Description: "Keep links in the content",
					},
					"include_images": {
						Type:        "boolean",
						Description: "Keep images in the content",
					},
				},
				Required: []string{"url"},
			},
		},
	}
}
