package cli

import (
	"github.com/spf13/cobra"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/fetch"
)

// DownloaderBuilder 根据配置构造下载器，返回的函数用于释放资源
type DownloaderBuilder func(cfg *config.Config, render bool) (fetch.Downloader, func())

// DefaultDownloaderBuilder render 为 true 时使用浏览器，否则直接 HTTP 下载
func DefaultDownloaderBuilder(cfg *config.Config, render bool) (fetch.Downloader, func()) {
	if render {
		b := fetch.NewBrowserDownloader(cfg.BrowserOptions())
		return b, b.Close
	}
	return fetch.NewHTTPDownloader(cfg.HTTPOptions()), func() {}
}

// NewFetchCommand 创建 webfetch 命令
func NewFetchCommand(build DownloaderBuilder) *cobra.Command {
	var (
		common        commonFlags
		format        string
		includeLinks  bool
		includeImages bool
		render        bool
	)

	cmd := &cobra.Command{
		Use:   "webfetch URL",
		Short: "Fetch a web page and extract its main content",
		Long: `webfetch downloads a page, strips navigation and other boilerplate,
and prints the main content as JSON.

Output formats:
  markdown   Markdown (default)
  text       plain text, links and images are always dropped
  html       cleaned HTML

Examples:
  webfetch "https://go.dev/doc/"
  webfetch "https://go.dev/doc/" --format text
  webfetch "https://go.dev/doc/" -l -i --render`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rawURL := args[0]
			out := cmd.OutOrStdout()

			fail := func(err error) error {
				if werr := writeJSON(out, fetch.NewErrorResult(err, rawURL)); werr != nil {
					return werr
				}
				return ErrReported
			}

			cfg, err := common.load(cmd.ErrOrStderr())
			if err != nil {
				return fail(err)
			}
			if !cmd.Flags().Changed("format") {
				format = cfg.Fetch.Format
			}
			parsed, err := fetch.ParseFormat(format)
			if err != nil {
				return fail(err)
			}

			downloader, release := build(cfg, render || cfg.Fetch.Render)
			defer release()

			res, err := fetch.NewService(downloader).Fetch(cmd.Context(), rawURL, fetch.Options{
				Format:        parsed,
				IncludeLinks:  includeLinks,
				IncludeImages: includeImages,
			})
			if err != nil {
				return fail(err)
			}
			return writeJSON(out, res)
		},
	}

	common.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "output format: markdown, text, html")
	cmd.Flags().BoolVarP(&includeLinks, "include-links", "l", false, "keep links")
	cmd.Flags().BoolVarP(&includeImages, "include-images", "i", false, "keep images")
	cmd.Flags().BoolVarP(&render, "render", "r", false, "render the page in headless Chrome before extracting")
	return cmd
}
