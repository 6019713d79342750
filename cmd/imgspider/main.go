package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/ImgSpider/internal/config"
	"github.com/RecoveryAshes/ImgSpider/internal/core"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// options 命令行参数
type options struct {
	// 全局参数
	configFile  string
	headersFile string
	verbose     bool
	logLevel    string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 爬取参数
	urlFile   string
	recursive bool
	level     int
	path      string
	timeout   int
	order     string
	report    bool
	progress  bool

	// PersistentPreRunE 中加载的配置
	appConfig *core.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "imgspider [flags] <url>",
		Short: "网页图片爬取工具",
		Long: `ImgSpider - 网页图片爬取工具

从入口页面开始下载页面上的图片,可选择递归跟随页面中的链接:
  • 按扩展名或HEAD探测的Content-Type识别图片
  • 递归深度限制,每个页面只访问一次
  • 同名文件自动追加 _1, _2 后缀
  • 批量URL处理
  • 自定义HTTP请求头

示例:
  # 只下载入口页面上的图片
  imgspider https://example.com

  # 递归3层,保存到 ./images
  imgspider -r -l 3 -p ./images https://example.com

  # 自定义请求头
  imgspider -H "User-Agent: MyBot/1.0" -H "Cookie: a=b" https://example.com

  # 验证请求头配置
  imgspider --validate-config

版本: ` + Version + `
构建时间: ` + BuildTime,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env 中的变量可以覆盖配置文件 (IMGSPIDER_*)
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("加载.env文件失败: %w", err)
			}

			appConfig, err := core.LoadConfig(opts.configFile)
			if err != nil {
				return fmt.Errorf("加载配置失败: %w", err)
			}

			appConfig.MergeCLIFlags(cliOverrides(cmd, opts))
			if opts.verbose {
				appConfig.Logging.Level = "debug"
			}

			logConfig := appConfig.LogConfig()
			logConfig.Console = cmd.OutOrStdout()
			if err := utils.InitLogger(logConfig); err != nil {
				return fmt.Errorf("初始化日志系统失败: %w", err)
			}

			if opts.verbose {
				utils.Debug("详细模式已启用")
			}

			opts.appConfig = appConfig
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, opts)
		},
	}

	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.Flags().StringArrayVarP(&opts.headers, "header", "H", nil, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().StringVar(&opts.headersFile, "headers-file", "", "HTTP头部配置文件 (默认 "+config.DefaultConfigFile+")")
	rootCmd.Flags().BoolVar(&opts.validateConfig, "validate-config", false, "验证HTTP头部配置")

	// 爬取参数
	rootCmd.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "递归跟随页面中的链接")
	rootCmd.Flags().IntVarP(&opts.level, "level", "l", 5, "递归模式下的最大深度")
	rootCmd.Flags().StringVarP(&opts.path, "path", "p", "", "图片保存目录 (默认 ./data/)")
	rootCmd.Flags().StringVarP(&opts.urlFile, "url-file", "f", "", "包含URL列表的文件路径")
	rootCmd.Flags().IntVar(&opts.timeout, "timeout", 5, "单个请求超时(秒)")
	rootCmd.Flags().StringVar(&opts.order, "order", "dfs", "页面遍历顺序 (dfs|bfs)")
	rootCmd.Flags().BoolVar(&opts.report, "report", false, "生成JSON和Markdown报告")
	rootCmd.Flags().BoolVar(&opts.progress, "progress", false, "显示进度条")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// runRoot 执行根命令
func runRoot(cmd *cobra.Command, args []string, opts *options) error {
	headerManager, err := core.NewHeaderManager(opts.headersFile, opts.headers)
	if err != nil {
		return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
	}

	if opts.validateConfig {
		return runValidateConfig(cmd, headerManager)
	}

	targetURL := ""
	if len(args) > 0 {
		targetURL = args[0]
	}

	if targetURL == "" && opts.urlFile == "" {
		return cmd.Help()
	}

	if err := ValidateFlags(targetURL, opts.level, opts.timeout, opts.order); err != nil {
		return err
	}

	appConfig := opts.appConfig
	if err := appConfig.Validate(); err != nil {
		return fmt.Errorf("配置无效: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var observer *progressObserver
	if opts.progress {
		observer = newProgressObserver()
		defer observer.Finish()
	}

	if opts.urlFile != "" {
		return runBatch(ctx, cmd, appConfig, headerManager, observer, opts.urlFile)
	}

	spider, err := core.NewSpider(targetURL, appConfig, headerManager)
	if err != nil {
		return fmt.Errorf("无效的目标URL: %w", err)
	}
	if observer != nil {
		spider.SetObserver(observer)
	}

	result, err := spider.Run(ctx)
	if err != nil {
		return fmt.Errorf("爬取失败: %w", err)
	}

	if observer != nil {
		observer.Finish()
	}
	printDownloads(cmd.OutOrStdout(), result.Downloads)
	printStats(cmd.OutOrStdout(), result.Stats)

	if result.Interrupted {
		utils.Warn("爬取被中断,已下载的图片保留在下载目录中")
		return nil
	}
	utils.Info("✨ 爬取任务完成!")
	return nil
}

// runBatch 批量处理URL文件
func runBatch(ctx context.Context, cmd *cobra.Command, appConfig *core.Config, headerManager *core.HeaderManager, observer *progressObserver, urlFile string) error {
	urls, err := utils.ReadURLsFromFile(urlFile)
	if err != nil {
		return fmt.Errorf("读取URL文件失败: %w", err)
	}

	batch := core.NewBatchSpider(appConfig, headerManager)
	if observer != nil {
		batch.SetObserver(observer)
	}

	summary := batch.CrawlBatch(ctx, urls)

	if observer != nil {
		observer.Finish()
	}
	for _, result := range summary.Results {
		if len(result.Downloads) > 0 {
			printDownloads(cmd.OutOrStdout(), result.Downloads)
		}
	}
	printStats(cmd.OutOrStdout(), summary.Stats)

	utils.Info("✨ 批量爬取任务完成!")
	return nil
}

// runValidateConfig 验证HTTP头部配置并输出脱敏后的有效头部
func runValidateConfig(cmd *cobra.Command, headerManager *core.HeaderManager) error {
	utils.Infof("🔍 验证HTTP头部配置: %s", headerManager.ConfigPath())

	if err := headerManager.ValidateAll(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	fmt.Fprintln(cmd.OutOrStdout(), headerManager.SafeHeaderString())
	return nil
}

// cliOverrides 收集用户显式指定的参数
func cliOverrides(cmd *cobra.Command, opts *options) core.CLIOverrides {
	var o core.CLIOverrides
	flags := cmd.Flags()

	if flags.Changed("recursive") {
		o.Recursive = &opts.recursive
	}
	if flags.Changed("level") {
		o.Level = &opts.level
	}
	if flags.Changed("path") {
		o.DownloadDir = &opts.path
	}
	if flags.Changed("timeout") {
		o.Timeout = &opts.timeout
	}
	if flags.Changed("order") {
		o.Order = &opts.order
	}
	if flags.Changed("report") {
		o.Report = &opts.report
	}
	if flags.Changed("log-level") {
		o.LogLevel = &opts.logLevel
	}
	return o
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ImgSpider %s\n", Version)
			fmt.Fprintf(out, "构建时间: %s\n", BuildTime)
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "配置文件管理",
	}

	var force bool
	var output string

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "生成HTTP头部配置模板",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.NewHeaderConfigLoader(output).WriteTemplate(force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的配置文件")
	initCmd.Flags().StringVarP(&output, "output", "o", config.DefaultConfigFile, "输出路径")

	configCmd.AddCommand(initCmd)
	return configCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
