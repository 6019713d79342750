package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// MaxFileSize 单个图片默认大小上限 50MB
	MaxFileSize = 50 * 1024 * 1024
)

// ImageExtensions 无需探测即可判定为图片的扩展名(小写)
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp"}

// ImageContentTypes HEAD探测时认可的图片Content-Type
var ImageContentTypes = []string{"image/jpeg", "image/png", "image/gif", "image/bmp"}

// DownloadedFile 已下载的图片
// 同一次运行中任意两个文件的FilePath互不相同
type DownloadedFile struct {
	// 标识信息
	ID       string `json:"id"`        // 文件唯一ID
	URL      string `json:"url"`       // 图片URL
	FileName string `json:"file_name"` // 最终文件名(可能带 _N 后缀)
	FilePath string `json:"file_path"` // 本地存储路径

	// 元数据
	Size        int64  `json:"size"`         // 文件大小(字节)
	ContentType string `json:"content_type"` // HTTP Content-Type

	// 来源信息
	SourcePage string `json:"source_page"` // 发现该图片的页面
	Depth      int    `json:"depth"`       // 来源页面深度

	DownloadedAt time.Time `json:"downloaded_at"`
}

// ValidateSize 验证文件大小, maxSize<=0 表示不限制上限
func (f *DownloadedFile) ValidateSize(maxSize int64) error {
	if f.Size <= 0 {
		return fmt.Errorf("文件大小必须大于0")
	}
	if maxSize > 0 && f.Size > maxSize {
		return fmt.Errorf("文件大小超过限制: %d > %d", f.Size, maxSize)
	}
	return nil
}

// ToJSON 序列化为JSON
func (f *DownloadedFile) ToJSON() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}

// FailedResource 处理失败的页面或图片
type FailedResource struct {
	URL        string    `json:"url"`
	Kind       ErrorKind `json:"kind"`
	ErrorMsg   string    `json:"error_msg"`
	SourcePage string    `json:"source_page,omitempty"`
	Depth      int       `json:"depth"`
}
