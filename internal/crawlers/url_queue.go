package crawlers

import (
	"sync"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// VisitedSet 一次爬取运行内已访问的规范化URL集合
// 只增不减,检查与插入在同一把锁内完成
type VisitedSet struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	order []string
}

// NewVisitedSet 创建空的已访问集合
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{
		seen: make(map[string]struct{}),
	}
}

// MarkVisited 标记URL为已访问, 首次标记返回true
func (s *VisitedSet) MarkVisited(normalizedURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[normalizedURL]; ok {
		return false
	}
	s.seen[normalizedURL] = struct{}{}
	s.order = append(s.order, normalizedURL)
	return true
}

// Contains 检查URL是否已访问
func (s *VisitedSet) Contains(normalizedURL string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[normalizedURL]
	return ok
}

// Len 已访问URL数量
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// URLs 按访问顺序返回已访问URL的副本
func (s *VisitedSet) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]string, len(s.order))
	copy(urls, s.order)
	return urls
}

// WorkList 待处理的 (url, depth) 工作列表
// dfs为后进先出的栈, bfs为先进先出的队列
type WorkList struct {
	order models.TraversalOrder
	items []models.URLItem
}

// NewWorkList 创建工作列表
func NewWorkList(order models.TraversalOrder) *WorkList {
	if order != models.OrderBFS {
		order = models.OrderDFS
	}
	return &WorkList{order: order}
}

// Push 添加单个工作项
func (w *WorkList) Push(item models.URLItem) {
	w.items = append(w.items, item)
}

// PushChildren 添加同一页面的子链接
// dfs模式逆序压栈,使弹出顺序与页面中链接的顺序一致
func (w *WorkList) PushChildren(children []models.URLItem) {
	if w.order == models.OrderBFS {
		w.items = append(w.items, children...)
		return
	}
	for i := len(children) - 1; i >= 0; i-- {
		w.items = append(w.items, children[i])
	}
}

// Pop 取出下一个工作项, 列表为空时返回false
func (w *WorkList) Pop() (models.URLItem, bool) {
	if len(w.items) == 0 {
		return models.URLItem{}, false
	}

	var item models.URLItem
	if w.order == models.OrderBFS {
		item = w.items[0]
		w.items[0] = models.URLItem{}
		w.items = w.items[1:]
	} else {
		last := len(w.items) - 1
		item = w.items[last]
		w.items = w.items[:last]
	}
	return item, true
}

// Len 待处理工作项数量
func (w *WorkList) Len() int {
	return len(w.items)
}

// Order 返回遍历顺序
func (w *WorkList) Order() models.TraversalOrder {
	return w.order
}
