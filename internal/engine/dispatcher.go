package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cliffyan/go-web-search/internal/textutil"
)

// Factory 根据配置构造引擎实例
type Factory func(opts Options) (SearchEngine, error)

// Dispatcher 按名称选择并调用搜索引擎
type Dispatcher struct {
	opts      Options
	factories map[string]Factory
	names     []string
	mu        sync.RWMutex
}

// NewDispatcher 创建分发器并注册内置引擎
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts:      opts,
		factories: make(map[string]Factory),
	}

	d.Register("duckduckgo", func(o Options) (SearchEngine, error) {
		return NewDuckDuckGoEngine(o), nil
	})
	d.Register("bing", func(o Options) (SearchEngine, error) {
		return NewBingEngine(o), nil
	})
	d.Register("baidu", func(o Options) (SearchEngine, error) {
		return NewBaiduEngine(o), nil
	})
	d.Register("google", func(o Options) (SearchEngine, error) {
		eng, err := NewGoogleEngine(o)
		if err != nil {
			return nil, err
		}
		return eng, nil
	})

	return d
}

// Register 注册引擎工厂，同名注册会覆盖原有工厂
func (d *Dispatcher) Register(name string, factory Factory) {
	name = normalizeName(name)

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.factories[name]; !exists {
		d.names = append(d.names, name)
	}
	d.factories[name] = factory
	log.Debug().Str("engine", name).Msg("registered search engine")
}

// Names 按注册顺序返回所有引擎名称
func (d *Dispatcher) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Engine 按名称（不区分大小写）构造引擎
func (d *Dispatcher) Engine(name string) (SearchEngine, error) {
	d.mu.RLock()
	factory, ok := d.factories[normalizeName(name)]
	d.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q, available engines: %s",
			ErrUnknownEngine, name, strings.Join(d.Names(), ", "))
	}
	return factory(d.opts)
}

// Search 使用指定引擎执行一次搜索
func (d *Dispatcher) Search(ctx context.Context, engineName, query string, numResults int) (*Response, error) {
	eng, err := d.Engine(engineName)
	if err != nil {
		return nil, err
	}
	if textutil.IsBlank(query) {
		return nil, ErrEmptyQuery
	}

	results, err := eng.Search(ctx, query, numResults)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", eng.Name(), err)
	}
	if results == nil {
		results = []SearchResult{}
	}

	log.Info().
		Str("engine", eng.Name()).
		Str("query", textutil.TruncateText(query, 80)).
		Int("results", len(results)).
		Msg("search finished")

	return &Response{
		Query:   query,
		Engine:  eng.Name(),
		Count:   len(results),
		Results: results,
	}, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
