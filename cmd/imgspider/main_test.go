package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

// executeCmd 执行根命令并返回输出
func executeCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// quietConfig 不写日志文件的配置
func quietConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "logging:\n  log_dir: \"\"\nstorage:\n  min_free_mb: 0\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCmd(t, "version", "-c", quietConfig(t))
	if err != nil {
		t.Fatalf("version失败: %v", err)
	}
	if !strings.Contains(out, "ImgSpider "+Version) {
		t.Errorf("输出缺少版本号: %s", out)
	}
}

func TestRootCommand_InvalidURL(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	_, err := executeCmd(t, "-c", quietConfig(t), "-p", dir, "ftp://example.com/a")
	if err == nil {
		t.Fatal("无效URL应返回错误")
	}
	if !strings.Contains(err.Error(), "无效的目标URL") {
		t.Errorf("错误信息不符: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("无效URL时不应创建下载目录")
	}
}

func TestRootCommand_InvalidFlags(t *testing.T) {
	cfg := quietConfig(t)
	if _, err := executeCmd(t, "-c", cfg, "--order", "random", "http://example.com"); err == nil {
		t.Error("无效的遍历顺序应返回错误")
	}
	if _, err := executeCmd(t, "-c", cfg, "-l", "-1", "http://example.com"); err == nil {
		t.Error("负数深度应返回错误")
	}
}

func TestRootCommand_Crawl(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<img src="/logo.gif"><a href="/next">next</a>`)
		case "/next":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<img src="/other.gif">`)
		case "/logo.gif", "/other.gif":
			w.Header().Set("Content-Type", "image/gif")
			fmt.Fprint(w, "GIF89a")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	t.Run("默认不递归", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		out, err := executeCmd(t, "-c", quietConfig(t), "-p", dir, srv.URL)
		if err != nil {
			t.Fatalf("爬取失败: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "logo.gif")); err != nil {
			t.Errorf("logo.gif 未下载: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "other.gif")); !os.IsNotExist(err) {
			t.Error("非递归模式不应跟随链接")
		}
		if !strings.Contains(out, "logo.gif") {
			t.Errorf("输出表格缺少文件名: %s", out)
		}
	})

	t.Run("递归", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		_, err := executeCmd(t, "-c", quietConfig(t), "-r", "-l", "1", "--order", "bfs", "-p", dir, srv.URL)
		if err != nil {
			t.Fatalf("爬取失败: %v", err)
		}

		for _, name := range []string{"logo.gif", "other.gif"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s 未下载: %v", name, err)
			}
		}
	})

	t.Run("批量模式", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		urlFile := filepath.Join(t.TempDir(), "urls.txt")
		content := "# 注释\n\n" + srv.URL + "\n" + srv.URL + "/next\n"
		if err := os.WriteFile(urlFile, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		_, err := executeCmd(t, "-c", quietConfig(t), "-p", dir, "-f", urlFile)
		if err != nil {
			t.Fatalf("批量爬取失败: %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 2 {
			t.Errorf("应下载2个文件, 实际 %d", len(entries))
		}
	})
}

func TestRootCommand_ValidateConfig(t *testing.T) {
	cfg := quietConfig(t)

	out, err := executeCmd(t, "-c", cfg, "--validate-config", "-H", "Authorization: Bearer abc123")
	if err != nil {
		t.Fatalf("合法头部验证失败: %v", err)
	}
	if !strings.Contains(out, "Authorization: Bearer ***") {
		t.Errorf("输出应包含脱敏后的头部: %s", out)
	}

	if _, err := executeCmd(t, "-c", cfg, "--validate-config", "-H", "Host: example.com"); err == nil {
		t.Error("禁止头部应验证失败")
	}
}

func TestConfigInitCommand(t *testing.T) {
	cfg := quietConfig(t)
	path := filepath.Join(t.TempDir(), "configs", "headers.yaml")

	if _, err := executeCmd(t, "config", "init", "-c", cfg, "--output", path); err != nil {
		t.Fatalf("config init失败: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("模板文件未生成: %v", err)
	}

	if _, err := executeCmd(t, "config", "init", "-c", cfg, "--output", path); err == nil {
		t.Error("文件已存在时应返回错误")
	}
	if _, err := executeCmd(t, "config", "init", "-c", cfg, "--output", path, "--force"); err != nil {
		t.Errorf("--force 应覆盖已有文件: %v", err)
	}
}

func TestCLIOverrides(t *testing.T) {
	newCmd := func(opts *options) *cobra.Command {
		cmd := &cobra.Command{Use: "imgspider"}
		cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "")
		cmd.Flags().IntVarP(&opts.level, "level", "l", 5, "")
		cmd.Flags().StringVar(&opts.order, "order", "dfs", "")
		return cmd
	}

	t.Run("显式指定的参数", func(t *testing.T) {
		opts := &options{}
		cmd := newCmd(opts)
		if err := cmd.ParseFlags([]string{"--log-level", "warn", "-l", "2"}); err != nil {
			t.Fatal(err)
		}

		o := cliOverrides(cmd, opts)
		if o.LogLevel == nil || *o.LogLevel != "warn" {
			t.Errorf("LogLevel = %v, want warn", o.LogLevel)
		}
		if o.Level == nil || *o.Level != 2 {
			t.Errorf("Level = %v, want 2", o.Level)
		}
		if o.Order != nil {
			t.Error("未指定的--order不应覆盖配置")
		}
	})

	t.Run("未指定日志级别", func(t *testing.T) {
		opts := &options{}
		cmd := newCmd(opts)
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}
		if o := cliOverrides(cmd, opts); o.LogLevel != nil {
			t.Errorf("LogLevel应为nil, 实际 %q", *o.LogLevel)
		}
	})
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		level   int
		timeout int
		order   string
		wantErr bool
	}{
		{"合法参数", "https://example.com", 5, 5, "dfs", false},
		{"未提供URL", "", 0, 5, "bfs", false},
		{"无效URL", "example.com", 5, 5, "dfs", true},
		{"深度过大", "https://example.com", 101, 5, "dfs", true},
		{"超时为0", "https://example.com", 5, 0, "dfs", true},
		{"无效顺序", "https://example.com", 5, 5, "random", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFlags(tt.url, tt.level, tt.timeout, tt.order)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFlags() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		2048:            "2.00 KB",
		3 * 1024 * 1024: "3.00 MB",
	}
	for size, want := range tests {
		if got := formatSize(size); got != want {
			t.Errorf("formatSize(%d) = %q, want %q", size, got, want)
		}
	}
}
