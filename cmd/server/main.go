package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/engine"
	"github.com/cliffyan/go-web-search/internal/fetch"
	"github.com/cliffyan/go-web-search/internal/logger"
	"github.com/cliffyan/go-web-search/internal/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the search and fetch tools over MCP (streamable HTTP)",
	Long: `server exposes the websearch and webfetch functionality as MCP tools.

Endpoints:
  POST/GET/DELETE /mcp   MCP JSON-RPC and session stream
  GET /health            status and available engines`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger.Setup(os.Stderr, config.EnvLogConfig(), zerolog.InfoLevel)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Setup(os.Stderr, cfg.Log, zerolog.InfoLevel)
	cfg.Print()

	dispatcher := engine.NewDispatcher(cfg.EngineOptions())

	var downloader fetch.Downloader = fetch.NewHTTPDownloader(cfg.HTTPOptions())
	if cfg.Fetch.Render {
		browser := fetch.NewBrowserDownloader(cfg.BrowserOptions())
		defer browser.Close()
		downloader = browser
	}

	srv := server.New(cfg, dispatcher, fetch.NewService(downloader))
	if err := srv.Start(cmd.Context()); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
