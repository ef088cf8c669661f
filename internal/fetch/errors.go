package fetch

import "errors"

var (
	// ErrInvalidURL URL 为空、无法解析或不是 http(s)
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidFormat 不支持的输出格式
	ErrInvalidFormat = errors.New("invalid output format")
	// ErrDownloadFailed 无法下载网页
	ErrDownloadFailed = errors.New("download failed")
	// ErrBrowserUnavailable 找不到或无法启动浏览器
	ErrBrowserUnavailable = errors.New("browser unavailable")
)
