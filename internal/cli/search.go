package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/engine"
)

// Searcher 执行一次搜索
type Searcher interface {
	Search(ctx context.Context, engineName, query string, numResults int) (*engine.Response, error)
}

// SearchBuilder 根据配置构造 Searcher
type SearchBuilder func(cfg *config.Config) Searcher

// DefaultSearchBuilder 使用内置引擎分发器
func DefaultSearchBuilder(cfg *config.Config) Searcher {
	return engine.NewDispatcher(cfg.EngineOptions())
}

// NewSearchCommand 创建 websearch 命令
func NewSearchCommand(build SearchBuilder) *cobra.Command {
	var (
		common       commonFlags
		engineName   string
		num          int
		googleAPIKey string
		googleCX     string
	)

	cmd := &cobra.Command{
		Use:   "websearch QUERY",
		Short: "Search the web with DuckDuckGo, Bing, Baidu or Google",
		Long: `websearch queries one search engine and prints the results as JSON.

Google uses the Custom Search JSON API and needs GOOGLE_API_KEY and
GOOGLE_CX_ID. The other engines need no credentials.

Examples:
  websearch "golang generics"
  websearch "golang generics" -e bing -n 5
  websearch "今日新闻" --engine baidu`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			out := cmd.OutOrStdout()

			fail := func(err error) error {
				if werr := writeJSON(out, engine.NewErrorResponse(err, query, engineName)); werr != nil {
					return werr
				}
				return ErrReported
			}

			cfg, err := common.load(cmd.ErrOrStderr())
			if err != nil {
				return fail(err)
			}
			if !cmd.Flags().Changed("engine") {
				engineName = cfg.Search.DefaultEngine
			}
			if !cmd.Flags().Changed("num") {
				num = cfg.Search.DefaultNum
			}
			if googleAPIKey != "" {
				cfg.Google.APIKey = googleAPIKey
			}
			if googleCX != "" {
				cfg.Google.CX = googleCX
			}

			resp, err := build(cfg).Search(cmd.Context(), engineName, query, num)
			if err != nil {
				return fail(err)
			}
			return writeJSON(out, resp)
		},
	}

	common.register(cmd)
	cmd.Flags().StringVarP(&engineName, "engine", "e", "google", "search engine: duckduckgo, bing, baidu, google")
	cmd.Flags().IntVarP(&num, "num", "n", 10, "number of results")
	cmd.Flags().StringVar(&googleAPIKey, "google-api-key", "", "Google API key (overrides "+engine.EnvGoogleAPIKey+")")
	cmd.Flags().StringVar(&googleCX, "google-cx", "", "Google search engine id (overrides "+engine.EnvGoogleCX+")")
	return cmd
}
