package main

import (
	"fmt"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// ValidateURL 验证URL格式
func ValidateURL(urlStr string) error {
	return models.ValidateURL(urlStr)
}

// ValidateFlags 验证命令行标志
func ValidateFlags(targetURL string, level int, timeout int, order string) error {
	if targetURL != "" {
		if err := ValidateURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	if level < 0 || level > 100 {
		return fmt.Errorf("最大深度必须在0-100之间,当前值: %d", level)
	}

	if timeout < 1 || timeout > 300 {
		return fmt.Errorf("超时时间必须在1-300秒之间,当前值: %d", timeout)
	}

	if _, err := models.ParseTraversalOrder(order); err != nil {
		return err
	}

	return nil
}
