package core

import (
	"errors"
	"net/http"
	"sync"

	"github.com/RecoveryAshes/ImgSpider/internal/config"
	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

const (
	// DefaultUserAgent 默认User-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/91.0.4472.124 Safari/537.36"
)

// HeaderManager 管理HTTP请求头部
// 合并优先级: 默认 < 配置文件 < 命令行, 实现 models.HeaderProvider 接口
type HeaderManager struct {
	mu sync.Mutex

	defaults http.Header
	config   http.Header
	cli      http.Header

	validator    *utils.HeaderValidator
	redactor     *utils.HeaderRedactor
	configLoader *config.HeaderConfigLoader

	loaded bool
	merged http.Header // 验证通过后的合并结果
}

// NewHeaderManager 创建头部管理器
// configFile为空时使用默认路径; cliHeaders格式为 "Name: Value"
func NewHeaderManager(configFile string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults:     getDefaultHeaders(),
		config:       make(http.Header),
		cli:          make(http.Header),
		validator:    utils.NewHeaderValidator(),
		redactor:     utils.NewHeaderRedactor(),
		configLoader: config.NewHeaderConfigLoader(configFile),
	}

	if len(cliHeaders) > 0 {
		parsed, err := models.CliHeaders(cliHeaders).Parse()
		if err != nil {
			return nil, err
		}
		hm.cli = parsed
	}

	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
// 不设置Accept-Encoding,由传输层协商压缩
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent": []string{DefaultUserAgent},
		"Accept":     []string{"*/*"},
	}
}

// ConfigPath 返回头部配置文件路径
func (hm *HeaderManager) ConfigPath() string {
	return hm.configLoader.Path()
}

// LoadConfig 加载配置文件, 已加载则跳过
func (hm *HeaderManager) LoadConfig() error {
	hm.mu.Lock()
	defer hm.mu.Unlock()
	return hm.loadLocked()
}

func (hm *HeaderManager) loadLocked() error {
	if hm.loaded {
		return nil
	}

	headerConfig, err := hm.configLoader.LoadConfig()
	if err != nil {
		utils.Errorf("加载HTTP头部配置失败: %v", err)
		return err
	}

	hm.config = make(http.Header)
	for name, value := range headerConfig.Headers {
		hm.config.Set(name, value)
	}
	hm.loaded = true

	if len(hm.config) > 0 {
		utils.Debugf("成功加载%d个HTTP头部配置: %s", len(hm.config), hm.redactor.RedactToString(hm.config))
	}
	return nil
}

// Validate 验证所有头部, 返回第一个错误
// 验证顺序: 默认 → 配置 → 命令行
func (hm *HeaderManager) Validate() error {
	if err := hm.validator.Validate(hm.defaults); err != nil {
		utils.Errorf("默认头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.config); err != nil {
		utils.Errorf("配置文件头部验证失败: %v", err)
		return err
	}
	if err := hm.validator.Validate(hm.cli); err != nil {
		utils.Errorf("命令行头部验证失败: %v", err)
		return err
	}

	utils.Debugf("所有HTTP头部验证通过")
	return nil
}

// ValidateAll 加载并验证全部头部, 汇总所有错误 (--validate-config 使用)
func (hm *HeaderManager) ValidateAll() error {
	if err := hm.LoadConfig(); err != nil {
		return err
	}
	return errors.Join(
		hm.validator.ValidateAll(hm.config),
		hm.validator.ValidateAll(hm.cli),
	)
}

// GetMergedHeaders 按优先级合并头部 (default < config < cli)
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, source := range []http.Header{hm.defaults, hm.config, hm.cli} {
		for name, values := range source {
			result[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的合并头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return hm.redactor.Redact(hm.GetMergedHeaders())
}

// SafeHeaderString 返回脱敏后的单行头部描述
func (hm *HeaderManager) SafeHeaderString() string {
	return hm.redactor.RedactToString(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
// 首次调用时加载并验证配置, 之后返回缓存结果的副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	hm.mu.Lock()
	defer hm.mu.Unlock()

	if hm.merged != nil {
		return hm.merged.Clone(), nil
	}

	if err := hm.loadLocked(); err != nil {
		return nil, err
	}
	if err := hm.Validate(); err != nil {
		return nil, err
	}

	hm.merged = hm.GetMergedHeaders()
	return hm.merged.Clone(), nil
}
