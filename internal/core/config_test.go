package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Crawl.Recursive {
		t.Error("默认不应递归")
	}
	if cfg.Crawl.MaxDepth != models.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want %d", cfg.Crawl.MaxDepth, models.DefaultMaxDepth)
	}
	if cfg.Crawl.Timeout != models.DefaultTimeout {
		t.Errorf("Timeout = %d, want %d", cfg.Crawl.Timeout, models.DefaultTimeout)
	}
	if cfg.Crawl.DedupeImages {
		t.Error("默认不应开启图片去重")
	}
	if cfg.Output.DownloadDir != models.DefaultDownloadDir {
		t.Errorf("DownloadDir = %q", cfg.Output.DownloadDir)
	}
	if cfg.Storage.MinFreeMB != 16 {
		t.Errorf("MinFreeMB = %d", cfg.Storage.MinFreeMB)
	}
	if cfg.Report.Enabled {
		t.Error("默认不生成报告")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Rotation.MaxSize != 10 {
		t.Errorf("日志默认值错误: %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应有效: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("读取指定配置文件", func(t *testing.T) {
		path := writeConfigFile(t, `
crawl:
  recursive: true
  max_depth: 3
  order: bfs
output:
  download_dir: ./images
report:
  enabled: true
logging:
  log_dir: ""
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig失败: %v", err)
		}

		if !cfg.Crawl.Recursive || cfg.Crawl.MaxDepth != 3 {
			t.Errorf("crawl配置未生效: %+v", cfg.Crawl)
		}
		if cfg.TraversalOrder() != models.OrderBFS {
			t.Errorf("TraversalOrder() = %s", cfg.TraversalOrder())
		}
		if cfg.Output.DownloadDir != "./images" {
			t.Errorf("DownloadDir = %q", cfg.Output.DownloadDir)
		}
		if !cfg.Report.Enabled || cfg.Report.Dir != "reports" {
			t.Errorf("report配置错误: %+v", cfg.Report)
		}
		if cfg.Logging.LogDir != "" {
			t.Errorf("LogDir应为空, 实际 %q", cfg.Logging.LogDir)
		}
		// 未出现在文件中的键使用默认值
		if cfg.Crawl.Timeout != models.DefaultTimeout {
			t.Errorf("Timeout = %d", cfg.Crawl.Timeout)
		}
	})

	t.Run("环境变量覆盖配置文件", func(t *testing.T) {
		path := writeConfigFile(t, "crawl:\n  max_depth: 3\n")
		t.Setenv("IMGSPIDER_CRAWL_MAX_DEPTH", "7")
		t.Setenv("IMGSPIDER_OUTPUT_DOWNLOAD_DIR", "/tmp/imgs")

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig失败: %v", err)
		}
		if cfg.Crawl.MaxDepth != 7 {
			t.Errorf("MaxDepth = %d, want 7", cfg.Crawl.MaxDepth)
		}
		if cfg.Output.DownloadDir != "/tmp/imgs" {
			t.Errorf("DownloadDir = %q", cfg.Output.DownloadDir)
		}
	})

	t.Run("指定的文件不存在", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		if err == nil {
			t.Error("期望返回错误")
		}
	})

	t.Run("YAML格式错误", func(t *testing.T) {
		path := writeConfigFile(t, "crawl:\n  max_depth: [1, 2\n")
		if _, err := LoadConfig(path); err == nil {
			t.Error("期望返回解析错误")
		}
	})
}

func TestConfig_MergeCLIFlags(t *testing.T) {
	cfg := DefaultConfig()

	recursive := true
	level := 2
	dir := "out"
	order := "bfs"
	logLevel := "warn"
	cfg.MergeCLIFlags(CLIOverrides{
		Recursive:   &recursive,
		Level:       &level,
		DownloadDir: &dir,
		Order:       &order,
		LogLevel:    &logLevel,
	})

	if !cfg.Crawl.Recursive || cfg.Crawl.MaxDepth != 2 {
		t.Errorf("命令行参数未覆盖: %+v", cfg.Crawl)
	}
	if cfg.Output.DownloadDir != "out" {
		t.Errorf("DownloadDir = %q", cfg.Output.DownloadDir)
	}
	if cfg.TraversalOrder() != models.OrderBFS {
		t.Errorf("TraversalOrder() = %s", cfg.TraversalOrder())
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
	// 未指定的参数保持不变
	if cfg.Crawl.Timeout != models.DefaultTimeout {
		t.Errorf("Timeout被意外修改: %d", cfg.Crawl.Timeout)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"下载目录为空", func(c *Config) { c.Output.DownloadDir = " " }},
		{"保留空间为负数", func(c *Config) { c.Storage.MinFreeMB = -1 }},
		{"启用报告但目录为空", func(c *Config) { c.Report.Enabled = true; c.Report.Dir = "" }},
		{"无效遍历顺序", func(c *Config) { c.Crawl.Order = "random" }},
		{"深度为负数", func(c *Config) { c.Crawl.MaxDepth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("期望返回验证错误")
			}
		})
	}
}

func TestConfig_LogConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "warn"

	lc := cfg.LogConfig()
	if lc.Level != "warn" || lc.LogDir != "logs" || lc.MaxBackups != 3 || !lc.Compress {
		t.Errorf("LogConfig() = %+v", lc)
	}
}
