// Package crawlers 实现深度受限的图片爬取
//
// # 概述
//
// 从入口URL出发跟随<a href>链接访问页面,下载每个页面上<img src>引用的图片。
// 每个规范化URL在一次运行中最多处理一次,深度不会超过配置的上限。
//
// # 核心组件
//
// ## URL规范化 (normalizer.go)
//
// IsValidURL 判断是否为带主机名的http/https地址。
// NormalizeURL 去掉路径末尾的'/'以及query和fragment,结果幂等:
//
//	NormalizeURL("http://a.com/x/")    // http://a.com/x
//	NormalizeURL("http://a.com/x#top") // http://a.com/x
//
// ## LinkExtractor (url_extractor.go)
//
// 基于HTMLParser(goquery)提取链接和图片候选。跳过空值、"#..."和"javascript:"链接,
// 相对链接按RFC 3986解析,结果去重并按字典序排序。
//
//	extractor := NewLinkExtractor(nil)
//	links := extractor.ExtractLinks(page, page.BaseURL())
//
// ## ImageClassifier (classifier.go)
//
// 路径以 .jpg/.jpeg/.png/.gif/.bmp 结尾(大小写不敏感)直接判定为图片,不发起请求;
// 否则发送HEAD请求,状态码为200且Content-Type包含已认可的图片类型才判定为图片。
// 探测失败一律视为非图片。
//
// ## ImageDownloader (downloader.go)
//
// 完整读取响应后才写文件。文件名取URL最后一段路径,为空时使用 image_<unix时间戳>,
// 缺少扩展名时根据Content-Type(必要时根据内容)补全。同名文件依次使用
// name_1.ext, name_2.ext ... ,通过O_EXCL独占创建保证不会覆盖已有文件。
//
// ## Fetcher (fetcher.go)
//
// 基于Colly的同步HTTP抓取器,实现GET和HEAD。每个请求使用collector的克隆,
// 共享底层HTTP客户端,请求头来自HeaderProvider。
//
// ## Engine (engine.go)
//
// 以 (url, depth) 工作列表代替递归。默认深度优先(栈,子链接逆序压栈,
// 访问顺序与递归实现一致),可选广度优先(队列)。
//
//	engine := NewEngine(fetcher,
//	    WithOrder(models.OrderDFS),
//	    WithDownloadDir("./data/"),
//	)
//	result, err := engine.Crawl(ctx, "https://example.com", 1)
//
// 每个工作项的处理流程:
//  1. 规范化URL;深度超限或已访问则跳过(均在网络请求之前)
//  2. 标记为已访问
//  3. 抓取页面,失败则记录并结束该分支
//  4. 逐个判定并下载图片,单张图片失败不影响其他图片
//  5. 深度未达上限时提取链接,以 depth+1 加入工作列表
//
// # 错误处理
//
// 错误按 models.ErrorKind 分类: invalid_url, fetch_failure,
// download_write_failure, classification_ambiguous。
// 只有入口URL无效或下载目录无法创建时Crawl返回错误,其余失败记录在CrawlResult.Failures中。
//
// # 并发
//
// 引擎单线程运行。VisitedSet的检查与插入在同一把锁内完成,
// 下载器的文件名冲突检查与创建是一次O_EXCL操作。
package crawlers
