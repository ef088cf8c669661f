package logger

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/config"
)

// New 创建 zerolog 日志器，format 为 json 时输出 JSON，否则输出控制台格式
func New(w io.Writer, level, format string, fallback zerolog.Level) zerolog.Logger {
	var out io.Writer = w
	if strings.ToLower(strings.TrimSpace(format)) != "json" {
		out = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.RFC3339,
		}
	}
	return zerolog.New(out).
		With().
		Timestamp().
		Logger().
		Level(parseLevel(level, fallback))
}

// Setup 按配置替换全局日志器，w 通常是 stderr（stdout 留给 JSON 结果）
func Setup(w io.Writer, cfg config.LogConfig, fallback zerolog.Level) zerolog.Logger {
	log.Logger = New(w, cfg.Level, cfg.Format, fallback)
	return log.Logger
}

func parseLevel(raw string, fallback zerolog.Level) zerolog.Level {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return fallback
	}
	return level
}
