package crawlers

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
	"github.com/RecoveryAshes/ImgSpider/internal/utils"
)

// SpaceChecker 写入前检查目标目录剩余空间
type SpaceChecker interface {
	CheckSpace(dir string, size int64) error
}

// DiskMonitor 下载目录磁盘空间监控器
// 写入后剩余空间低于安全保留值时拒绝写入
type DiskMonitor struct {
	// 安全保留空间(字节)
	minFree uint64

	// 查询磁盘使用情况,测试时可替换
	usage func(path string) (*disk.UsageStat, error)
}

// NewDiskMonitor 创建磁盘监控器, minFreeMB<=0 时不做检查
func NewDiskMonitor(minFreeMB int) *DiskMonitor {
	var minFree uint64
	if minFreeMB > 0 {
		minFree = uint64(minFreeMB) * 1024 * 1024
	}
	return &DiskMonitor{
		minFree: minFree,
		usage:   disk.Usage,
	}
}

// FreeSpace 返回目录所在文件系统的可用空间(字节)
func (m *DiskMonitor) FreeSpace(dir string) (uint64, error) {
	stat, err := m.usage(dir)
	if err != nil {
		return 0, fmt.Errorf("获取磁盘使用情况失败: %w", err)
	}
	return stat.Free, nil
}

// CheckSpace 检查写入size字节后剩余空间是否仍不低于安全保留值
// 无法获取磁盘信息时只记录警告并放行
func (m *DiskMonitor) CheckSpace(dir string, size int64) error {
	if m == nil || m.minFree == 0 {
		return nil
	}

	free, err := m.FreeSpace(dir)
	if err != nil {
		utils.Warnf("⚠️  无法检查磁盘空间 [%s]: %v", dir, err)
		return nil
	}

	if size < 0 {
		size = 0
	}
	if free < uint64(size)+m.minFree {
		return models.NewCrawlError(models.KindDownloadWriteFailure, dir,
			fmt.Errorf("磁盘空间不足: 可用 %d 字节, 需要 %d 字节 (含保留 %d 字节)",
				free, uint64(size)+m.minFree, m.minFree))
	}
	return nil
}
