package engine

import "errors"

var (
	// ErrUnknownEngine 引擎名称未注册
	ErrUnknownEngine = errors.New("unknown search engine")
	// ErrMissingCredentials 引擎缺少必需的凭据
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrEmptyQuery 查询为空
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrFeatureUnavailable 依赖的搜索库或后端不可用
	ErrFeatureUnavailable = errors.New("search feature unavailable")
)

// IsConfigurationError 判断错误是否属于配置类错误（需要用户修正，而不是重试）
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrUnknownEngine) ||
		errors.Is(err, ErrMissingCredentials) ||
		errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrFeatureUnavailable)
}
