package models

// URLItem 表示工作列表中的一个待处理项
// 用途:
//   - 在工作列表中传递URL和深度信息
//   - 同一结构同时服务深度优先(栈)和广度优先(队列)两种策略
type URLItem struct {
	// URL 规范化后的URL
	URL string

	// Depth URL的深度层级
	//   - 0: 入口URL
	//   - 1: 从入口页面发现的链接
	//   - 以此类推...
	Depth int

	// SourceURL 发现此URL的页面(入口URL为空)
	SourceURL string
}
