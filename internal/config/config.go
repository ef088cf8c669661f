package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/cliffyan/go-web-search/internal/engine"
	"github.com/cliffyan/go-web-search/internal/fetch"
)

// Config 应用配置
type Config struct {
	// 日志配置
	Log LogConfig `yaml:"log"`

	// 搜索配置
	Search SearchConfig `yaml:"search"`

	// 代理配置
	Proxy ProxyConfig `yaml:"proxy"`

	// 各搜索引擎配置
	Google     GoogleConfig     `yaml:"google"`
	DuckDuckGo DuckDuckGoConfig `yaml:"duckduckgo"`

	// 网页抓取配置
	Fetch FetchConfig `yaml:"fetch"`

	// 浏览器配置
	Browser BrowserConfig `yaml:"browser"`

	// 服务器配置
	Server ServerConfig `yaml:"server"`

	// MCP 配置
	MCP MCPConfig `yaml:"mcp"`
}

// LogConfig 日志配置，Level 为空时由调用方决定默认级别
type LogConfig struct {
	Level  string `yaml:"level" env:"WEBSEARCH_LOG_LEVEL"`
	Format string `yaml:"format" env:"WEBSEARCH_LOG_FORMAT"`
}

// SearchConfig 搜索配置
type SearchConfig struct {
	DefaultEngine string        `yaml:"default_engine" env:"WEBSEARCH_DEFAULT_ENGINE"`
	DefaultNum    int           `yaml:"default_num"`
	Timeout       time.Duration `yaml:"timeout"`
}

// ProxyConfig 代理配置
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	// EnvURL 来自环境变量，非空时启用代理并覆盖 URL
	EnvURL string `yaml:"-" env:"WEBSEARCH_PROXY_URL"`
}

// GoogleConfig Google Custom Search 凭据
type GoogleConfig struct {
	APIKey string `yaml:"api_key" env:"GOOGLE_API_KEY"`
	CX     string `yaml:"cx" env:"GOOGLE_CX_ID"`
}

// DuckDuckGoConfig DuckDuckGo 配置
type DuckDuckGoConfig struct {
	Backend string `yaml:"backend" env:"WEBSEARCH_DDG_BACKEND"`
	Region  string `yaml:"region"`
}

// FetchConfig 网页抓取配置
type FetchConfig struct {
	Format       string        `yaml:"format"`
	Render       bool          `yaml:"render"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	Headless bool   `yaml:"headless"`
	Path     string `yaml:"path" env:"WEBSEARCH_BROWSER_PATH"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int        `yaml:"port" env:"WEBSEARCH_SERVER_PORT"`
	Host string     `yaml:"host"`
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Origin  string `yaml:"origin"`
}

// MCPConfig MCP 协议配置
type MCPConfig struct {
	ServerName    string         `yaml:"server_name"`
	ServerVersion string         `yaml:"server_version"`
	Tools         MCPToolsConfig `yaml:"tools"`
}

// MCPToolsConfig MCP 工具名称配置
type MCPToolsConfig struct {
	SearchName        string `yaml:"search_name"`
	SearchDescription string `yaml:"search_description"`
	FetchName         string `yaml:"fetch_name"`
	FetchDescription  string `yaml:"fetch_description"`
}

// ValidEngines 有效的搜索引擎列表
var ValidEngines = []string{"duckduckgo", "bing", "baidu", "google"}

// DefaultConfig 默认配置
var DefaultConfig = &Config{
	Search: SearchConfig{
		DefaultEngine: "google",
		DefaultNum:    10,
		Timeout:       15 * time.Second,
	},
	DuckDuckGo: DuckDuckGoConfig{
		Backend: "html",
		Region:  "wt-wt",
	},
	Fetch: FetchConfig{
		Format:       "markdown",
		Timeout:      30 * time.Second,
		MaxBodyBytes: 10 << 20,
	},
	Browser: BrowserConfig{
		Headless: true,
	},
	Server: ServerConfig{
		Port: 3456,
		Host: "0.0.0.0",
		CORS: CORSConfig{
			Enabled: false,
			Origin:  "*",
		},
	},
	MCP: MCPConfig{
		ServerName:    "go-web-search",
		ServerVersion: "1.0.0",
		Tools: MCPToolsConfig{
			SearchName:        "search",
			SearchDescription: "Search the web with DuckDuckGo, Bing, Baidu or Google. Returns structured results with title, url and snippet.",
			FetchName:         "fetch",
			FetchDescription:  "Fetch a web page and extract its main content as markdown, plain text or HTML.",
		},
	},
}

// configSearchPaths 配置文件搜索路径
var configSearchPaths = []string{
	"config.yaml",
	"config.yml",
	"configs/config.yaml",
	"configs/config.yml",
}

// Load 加载配置：YAML 文件、.env、环境变量依次覆盖
// path 非空时必须能读取和解析；为空时按 WEBSEARCH_CONFIG、CONFIG_FILE 和默认路径查找，
// 找不到或解析失败都退回默认配置
func Load(path string) (*Config, error) {
	cfg := *DefaultConfig

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	} else if found := findConfigFile(); found != "" {
		if err := cfg.readFile(found); err != nil {
			log.Warn().Err(err).Msg("using default configuration")
			cfg = *DefaultConfig
		}
	} else {
		log.Debug().Msg("no config file found, using default configuration")
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.validate()
	return &cfg, nil
}

// EnvLogConfig 只从环境变量读取日志配置，供加载配置文件之前初始化日志
func EnvLogConfig() LogConfig {
	var lc LogConfig
	if err := env.Parse(&lc); err != nil {
		return LogConfig{}
	}
	return lc
}

// LoadFromFile 只从指定文件加载配置，不读取环境变量
func LoadFromFile(path string) (*Config, error) {
	cfg := *DefaultConfig
	if err := cfg.readFile(path); err != nil {
		return nil, err
	}
	cfg.validate()
	return &cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s failed: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("configuration loaded")
	return nil
}

// loadDotEnv 加载 .env，不覆盖已有的环境变量
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s failed: %w", path, err)
}

// applyEnv 用环境变量覆盖配置，未设置的变量保持原值
func (c *Config) applyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("parse environment failed: %w", err)
	}
	if c.Proxy.EnvURL != "" {
		c.Proxy.Enabled = true
		c.Proxy.URL = c.Proxy.EnvURL
	}
	return nil
}

// findConfigFile 查找配置文件
func findConfigFile() string {
	for _, key := range []string{"WEBSEARCH_CONFIG", "CONFIG_FILE"} {
		envPath := os.Getenv(key)
		if envPath == "" {
			continue
		}
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		log.Warn().Str(key, envPath).Msg("config file not found, searching default paths")
	}

	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}
	workDir, _ := os.Getwd()

	searchDirs := []string{workDir}
	if execDir != "" && execDir != workDir {
		searchDirs = append(searchDirs, execDir)
	}

	for _, dir := range searchDirs {
		for _, name := range configSearchPaths {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// validate 验证并修正配置
func (c *Config) validate() {
	c.Search.DefaultEngine = strings.ToLower(strings.TrimSpace(c.Search.DefaultEngine))
	if !slices.Contains(ValidEngines, c.Search.DefaultEngine) {
		log.Warn().
			Str("default_engine", c.Search.DefaultEngine).
			Str("fallback", DefaultConfig.Search.DefaultEngine).
			Msg("invalid default engine")
		c.Search.DefaultEngine = DefaultConfig.Search.DefaultEngine
	}
	if c.Search.DefaultNum <= 0 {
		c.Search.DefaultNum = DefaultConfig.Search.DefaultNum
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = DefaultConfig.Search.Timeout
	}

	if c.Proxy.Enabled && c.Proxy.URL == "" {
		log.Warn().Msg("proxy enabled but url is empty, proxy disabled")
		c.Proxy.Enabled = false
	}

	if c.DuckDuckGo.Backend == "" {
		c.DuckDuckGo.Backend = DefaultConfig.DuckDuckGo.Backend
	}
	if c.DuckDuckGo.Region == "" {
		c.DuckDuckGo.Region = DefaultConfig.DuckDuckGo.Region
	}

	if _, err := fetch.ParseFormat(c.Fetch.Format); err != nil {
		log.Warn().Err(err).Str("fallback", DefaultConfig.Fetch.Format).Msg("invalid fetch format")
		c.Fetch.Format = DefaultConfig.Fetch.Format
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = DefaultConfig.Fetch.Timeout
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = DefaultConfig.Fetch.MaxBodyBytes
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		log.Warn().Int("port", c.Server.Port).Int("fallback", DefaultConfig.Server.Port).Msg("invalid port")
		c.Server.Port = DefaultConfig.Server.Port
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultConfig.Server.Host
	}
	if c.Server.CORS.Origin == "" {
		c.Server.CORS.Origin = DefaultConfig.Server.CORS.Origin
	}

	if c.MCP.ServerName == "" {
		c.MCP.ServerName = DefaultConfig.MCP.ServerName
	}
	if c.MCP.ServerVersion == "" {
		c.MCP.ServerVersion = DefaultConfig.MCP.ServerVersion
	}
	if c.MCP.Tools.SearchName == "" {
		c.MCP.Tools.SearchName = DefaultConfig.MCP.Tools.SearchName
	}
	if c.MCP.Tools.SearchDescription == "" {
		c.MCP.Tools.SearchDescription = DefaultConfig.MCP.Tools.SearchDescription
	}
	if c.MCP.Tools.FetchName == "" {
		c.MCP.Tools.FetchName = DefaultConfig.MCP.Tools.FetchName
	}
	if c.MCP.Tools.FetchDescription == "" {
		c.MCP.Tools.FetchDescription = DefaultConfig.MCP.Tools.FetchDescription
	}
}

// ProxyURL 返回生效的代理地址，未启用时为空
func (c *Config) ProxyURL() string {
	if !c.Proxy.Enabled {
		return ""
	}
	return c.Proxy.URL
}

// SetProxy 覆盖代理地址，空字符串不做修改
func (c *Config) SetProxy(proxyURL string) {
	if proxyURL == "" {
		return
	}
	c.Proxy.Enabled = true
	c.Proxy.URL = proxyURL
}

// EngineOptions 构造搜索引擎配置
func (c *Config) EngineOptions() engine.Options {
	return engine.Options{
		ProxyURL: c.ProxyURL(),
		Timeout:  c.Search.Timeout,
		Google: engine.GoogleConfig{
			APIKey: c.Google.APIKey,
			CX:     c.Google.CX,
		},
		DuckDuckGo: engine.DuckDuckGoConfig{
			Backend: c.DuckDuckGo.Backend,
			Region:  c.DuckDuckGo.Region,
		},
	}
}

// HTTPOptions 构造网页下载配置
func (c *Config) HTTPOptions() fetch.HTTPOptions {
	return fetch.HTTPOptions{
		ProxyURL:     c.ProxyURL(),
		Timeout:      c.Fetch.Timeout,
		MaxBodyBytes: c.Fetch.MaxBodyBytes,
	}
}

// BrowserOptions 构造浏览器下载配置
func (c *Config) BrowserOptions() fetch.BrowserOptions {
	return fetch.BrowserOptions{
		ExecPath: c.Browser.Path,
		ProxyURL: c.ProxyURL(),
		Headless: c.Browser.Headless,
		Timeout:  c.Fetch.Timeout,
	}
}

// Print 在 debug 级别输出生效的配置，不包含凭据
func (c *Config) Print() {
	log.Debug().
		Str("default_engine", c.Search.DefaultEngine).
		Int("default_num", c.Search.DefaultNum).
		Str("proxy", c.ProxyURL()).
		Bool("google_configured", c.Google.APIKey != "" && c.Google.CX != "").
		Str("ddg_backend", c.DuckDuckGo.Backend).
		Str("fetch_format", c.Fetch.Format).
		Bool("cors", c.Server.CORS.Enabled).
		Str("listen", fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)).
		Msg("effective configuration")
}
