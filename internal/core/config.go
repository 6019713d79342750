package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// EnvPrefix 环境变量前缀, 如 crawl.max_depth 对应 IMGSPIDER_CRAWL_MAX_DEPTH
const EnvPrefix = "IMGSPIDER"

// Config 应用程序配置
type Config struct {
	Crawl   models.CrawlConfig `mapstructure:"crawl"`
	Output  OutputConfig       `mapstructure:"output"`
	Storage StorageConfig      `mapstructure:"storage"`
	Report  ReportConfig       `mapstructure:"report"`
	Logging LoggingConfig      `mapstructure:"logging"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	DownloadDir string `mapstructure:"download_dir"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	MinFreeMB int `mapstructure:"min_free_mb"` // 下载目录所在磁盘的安全保留空间, 0为不检查
}

// ReportConfig 报告配置
type ReportConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// CLIOverrides 命令行中显式指定的参数, nil表示未指定
type CLIOverrides struct {
	Recursive   *bool
	Level       *int
	DownloadDir *string
	Timeout     *int
	Order       *string
	Report      *bool
	LogLevel    *string
}

// LoadConfig 加载配置文件
// configPath为空时依次搜索 ./configs, ., $XDG_CONFIG_HOME/imgspider, ~/.imgspider
// 未找到配置文件时使用默认值;环境变量 IMGSPIDER_* 覆盖配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "imgspider"))
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".imgspider"))
		}
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		utils.Debugf("未找到配置文件,使用默认配置")
	} else {
		utils.Debugf("使用配置文件: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// DefaultConfig 返回全部为默认值的配置
func DefaultConfig() *Config {
	v := viper.New()
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		// 默认值是固定的,不会解析失败
		panic(fmt.Sprintf("解析默认配置失败: %v", err))
	}
	return &config
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	crawl := models.DefaultCrawlConfig()
	v.SetDefault("crawl.recursive", crawl.Recursive)
	v.SetDefault("crawl.max_depth", crawl.MaxDepth)
	v.SetDefault("crawl.timeout", crawl.Timeout)
	v.SetDefault("crawl.order", crawl.Order)
	v.SetDefault("crawl.max_body_size_mb", crawl.MaxBodySizeMB)
	v.SetDefault("crawl.insecure_skip_verify", crawl.InsecureSkipVerify)
	v.SetDefault("crawl.dedupe_images", crawl.DedupeImages)

	v.SetDefault("output.download_dir", models.DefaultDownloadDir)

	v.SetDefault("storage.min_free_mb", 16)

	v.SetDefault("report.enabled", false)
	v.SetDefault("report.dir", "reports")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// MergeCLIFlags 合并命令行参数,命令行优先于配置文件和环境变量
func (c *Config) MergeCLIFlags(o CLIOverrides) {
	if o.Recursive != nil {
		c.Crawl.Recursive = *o.Recursive
	}
	if o.Level != nil {
		c.Crawl.MaxDepth = *o.Level
	}
	if o.DownloadDir != nil {
		c.Output.DownloadDir = *o.DownloadDir
	}
	if o.Timeout != nil {
		c.Crawl.Timeout = *o.Timeout
	}
	if o.Order != nil {
		c.Crawl.Order = *o.Order
	}
	if o.Report != nil {
		c.Report.Enabled = *o.Report
	}
	if o.LogLevel != nil {
		c.Logging.Level = *o.LogLevel
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if err := c.Crawl.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Output.DownloadDir) == "" {
		return fmt.Errorf("下载目录不能为空")
	}
	if c.Storage.MinFreeMB < 0 {
		return fmt.Errorf("磁盘保留空间不能为负数: %d", c.Storage.MinFreeMB)
	}
	if c.Report.Enabled && strings.TrimSpace(c.Report.Dir) == "" {
		return fmt.Errorf("启用报告时报告目录不能为空")
	}
	return nil
}

// GetCrawlConfig 从配置中提取爬取配置
func (c *Config) GetCrawlConfig() models.CrawlConfig {
	return c.Crawl
}

// TraversalOrder 返回解析后的遍历顺序, 无效值按dfs处理
func (c *Config) TraversalOrder() models.TraversalOrder {
	order, err := models.ParseTraversalOrder(c.Crawl.Order)
	if err != nil {
		return models.OrderDFS
	}
	return order
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}
