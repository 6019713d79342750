package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/ImgSpider/internal/models"
)

// utf8BOM Windows记事本保存的文件可能带有BOM
const utf8BOM = "\ufeff"

// ReadURLsFromFile 读取批量模式的入口URL列表
// 每行一个URL, 空行和#开头的行忽略; 无效URL和重复URL记录警告后跳过, 其余保持文件中的顺序
func ReadURLsFromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开URL文件失败: %w", err)
	}
	defer f.Close()

	var (
		seeds []string
		seen  = make(map[string]int)
		line  int
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		if line == 1 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		seed := strings.TrimSpace(raw)

		if seed == "" || seed[0] == '#' {
			continue
		}
		if err := models.ValidateURL(seed); err != nil {
			Warnf("第 %d 行不是有效的入口URL, 已跳过: %v", line, err)
			continue
		}
		if first, dup := seen[seed]; dup {
			Warnf("第 %d 行与第 %d 行重复, 已跳过: %s", line, first, seed)
			continue
		}

		seen[seed] = line
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取URL文件失败 [%s]: %w", path, err)
	}

	if len(seeds) == 0 {
		return nil, fmt.Errorf("URL文件中没有有效的URL: %s", path)
	}

	Infof("📋 从 %s 加载了 %d 个入口URL", path, len(seeds))
	return seeds, nil
}
