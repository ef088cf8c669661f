package fetch

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

const defaultBrowserTimeout = 60 * time.Second

// BrowserOptions 浏览器配置
type BrowserOptions struct {
	// ExecPath 为空时在常见安装位置查找 Chrome
	ExecPath string
	ProxyURL string
	Headless bool
	Timeout  time.Duration
}

// BrowserDownloader 使用无头 Chrome 渲染页面后再取 HTML，适合依赖脚本的页面
// 浏览器在第一次下载时启动，多次下载共用同一个实例
type BrowserDownloader struct {
	opts BrowserOptions

	mu          sync.Mutex
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancelFunc  context.CancelFunc
	initialized bool
}

// NewBrowserDownloader 创建浏览器下载器
func NewBrowserDownloader(opts BrowserOptions) *BrowserDownloader {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultBrowserTimeout
	}
	return &BrowserDownloader{opts: opts}
}

// chromeCandidates 各平台常见的 Chrome 安装位置
var chromeCandidates = func() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
			"/Applications/Google Chrome Canary.app/Contents/MacOS/Google Chrome Canary",
		}
	case "linux":
		return []string{
			"/usr/bin/google-chrome",
			"/usr/bin/google-chrome-stable",
			"/usr/bin/chromium",
			"/usr/bin/chromium-browser",
			"/snap/bin/chromium",
		}
	case "windows":
		return []string{
			`C:\Program Files\Google\Chrome\Application\chrome.exe`,
			`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
			os.Getenv("LOCALAPPDATA") + `\Google\Chrome\Application\chrome.exe`,
		}
	}
	return nil
}

// findChromePath 查找 Chrome 可执行文件，显式配置的路径优先
func findChromePath(explicit string) string {
	paths := chromeCandidates()
	if explicit != "" {
		paths = append([]string{explicit}, paths...)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			log.Debug().Str("path", p).Msg("found chrome")
			return p
		}
	}
	return ""
}

// start 启动浏览器，调用方需持有锁
func (b *BrowserDownloader) start() error {
	if b.initialized {
		return nil
	}

	chromePath := findChromePath(b.opts.ExecPath)
	if chromePath == "" {
		return fmt.Errorf("%w: Chrome/Chromium not found, install Chrome or set browser.path", ErrBrowserUnavailable)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),

		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),

		// 隐藏自动化特征
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),

		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if b.opts.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(b.opts.ProxyURL))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		}),
	)

	// 预热
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return fmt.Errorf("%w: start browser: %w", ErrBrowserUnavailable, err)
	}

	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.cancelFunc = cancel
	b.initialized = true
	log.Info().Bool("headless", b.opts.Headless).Str("path", chromePath).Msg("browser started")
	return nil
}

// newTab 创建带超时的标签页上下文，ctx 取消时标签页一并关闭
func (b *BrowserDownloader) newTab(ctx context.Context) (context.Context, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.start(); err != nil {
		return nil, nil, err
	}

	tabCtx, tabCancel := chromedp.NewContext(b.browserCtx)
	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, b.opts.Timeout)
	stop := context.AfterFunc(ctx, timeoutCancel)

	return timeoutCtx, func() {
		stop()
		timeoutCancel()
		tabCancel()
	}, nil
}

// Download 打开页面，等待 body 就绪后返回渲染后的 HTML
func (b *BrowserDownloader) Download(ctx context.Context, rawURL string) ([]byte, error) {
	tabCtx, cancel, err := b.newTab(ctx)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var html string
	err = chromedp.Run(tabCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: render %s: %w", ErrDownloadFailed, rawURL, err)
	}
	if html == "" {
		return nil, fmt.Errorf("%w: empty page", ErrDownloadFailed)
	}
	return []byte(html), nil
}

// Close 关闭浏览器，未启动时什么也不做
func (b *BrowserDownloader) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}
	b.cancelFunc()
	b.allocCancel()
	b.initialized = false
	log.Debug().Msg("browser closed")
}
