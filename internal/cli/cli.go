// Package cli 实现 websearch 和 webfetch 命令行
package cli

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cliffyan/go-web-search/internal/config"
	"github.com/cliffyan/go-web-search/internal/logger"
)

// ErrReported 错误已作为 JSON 文档写到标准输出，调用方只需以状态 1 退出
var ErrReported = errors.New("error reported")

// commonFlags 两个命令共用的参数
type commonFlags struct {
	configPath string
	proxy      string
	logLevel   string
	jsonOutput bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "config file path")
	cmd.Flags().StringVar(&f.proxy, "proxy", "", "proxy URL, e.g. http://127.0.0.1:7890")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	// 输出始终是 JSON，保留该参数只为兼容
	cmd.Flags().BoolVarP(&f.jsonOutput, "json", "j", false, "output JSON only (always on)")
}

// load 加载配置并初始化日志，日志写到 logOut
// 加载配置之前先按参数和环境变量初始化一次，加载过程中的日志同样遵循级别
func (f *commonFlags) load(logOut io.Writer) (*config.Config, error) {
	boot := config.EnvLogConfig()
	if f.logLevel != "" {
		boot.Level = f.logLevel
	}
	logger.Setup(logOut, boot, zerolog.WarnLevel)

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	logger.Setup(logOut, cfg.Log, zerolog.WarnLevel)
	cfg.SetProxy(f.proxy)
	cfg.Print()
	return cfg, nil
}

// writeJSON 输出缩进 JSON，不转义非 ASCII 和 HTML 字符
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
