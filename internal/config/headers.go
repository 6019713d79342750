package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

const (
	// DefaultConfigFile 默认请求头配置文件路径
	DefaultConfigFile = "configs/headers.yaml"

	// MaxConfigFileSize 配置文件最大大小 (1MB)
	MaxConfigFileSize = 1 * 1024 * 1024
)

//go:embed headers_template.yaml
var defaultHeaderTemplate string

// HeaderTemplate 返回内置的请求头配置模板
func HeaderTemplate() string {
	return defaultHeaderTemplate
}

// HeaderConfigLoader 请求头配置文件加载器
type HeaderConfigLoader struct {
	configPath string

	// explicit 路径由用户指定,文件不存在时报错
	explicit bool
}

// NewHeaderConfigLoader 创建加载器, configPath为空时使用默认路径
func NewHeaderConfigLoader(configPath string) *HeaderConfigLoader {
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigFile
	}
	return &HeaderConfigLoader{
		configPath: configPath,
		explicit:   explicit,
	}
}

// Path 返回配置文件路径
func (hcl *HeaderConfigLoader) Path() string {
	return hcl.configPath
}

// WriteTemplate 写入配置模板
// 文件已存在且force为false时返回错误
func (hcl *HeaderConfigLoader) WriteTemplate(force bool) error {
	if !force {
		if _, err := os.Stat(hcl.configPath); err == nil {
			return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", hcl.configPath)
		}
	}

	dir := filepath.Dir(hcl.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}

	if err := os.WriteFile(hcl.configPath, []byte(defaultHeaderTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", hcl.configPath, err)
	}

	utils.Infof("✅ 已生成请求头配置模板: %s", hcl.configPath)
	return nil
}

// ValidateFileSize 验证配置文件大小是否在限制内
func (hcl *HeaderConfigLoader) ValidateFileSize() error {
	info, err := os.Stat(hcl.configPath)
	if err != nil {
		return fmt.Errorf("无法读取配置文件信息 [%s]: %w", hcl.configPath, err)
	}

	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: hcl.configPath,
			Cause: fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)",
				info.Size(), MaxConfigFileSize),
		}
	}

	return nil
}

// LoadConfig 加载并解析请求头配置
// 默认路径下没有配置文件时返回空配置;用户指定的文件不存在时返回ConfigError
func (hcl *HeaderConfigLoader) LoadConfig() (*models.HeaderConfig, error) {
	if _, err := os.Stat(hcl.configPath); errors.Is(err, fs.ErrNotExist) {
		if hcl.explicit {
			return nil, &models.ConfigError{FilePath: hcl.configPath, Cause: err}
		}
		utils.Debugf("未找到请求头配置文件 [%s], 使用默认请求头", hcl.configPath)
		return &models.HeaderConfig{Headers: make(map[string]string)}, nil
	}

	if err := hcl.ValidateFileSize(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigFile(hcl.configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, &models.ConfigError{
			FilePath: hcl.configPath,
			Cause:    err,
		}
	}

	var config models.HeaderConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: hcl.configPath,
			Cause:    fmt.Errorf("配置绑定失败: %w", err),
		}
	}

	if config.Headers == nil {
		config.Headers = make(map[string]string)
	}

	return &config, nil
}
