package store

import (
	"strings"
	"time"
)

// parseSQLiteDateTime 解析 SQLite 存储的时间文本
// 本库写入固定用带毫秒和时区的格式，但历史数据/手工修改过的库可能缺省其中一部分
func parseSQLiteDateTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	layouts := []string{
		"2006-01-02 15:04:05.999-07:00",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02 15:04:05.999",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	// 兜底：空格分隔的时间若末尾带时区，替换为 'T' 后按 RFC3339Nano 再试一次
	if strings.Contains(value, " ") && len(value) > 19 {
		tail := value[19:]
		if strings.ContainsAny(tail, "+-Z") {
			if t, err := time.Parse(time.RFC3339Nano, strings.Replace(value, " ", "T", 1)); err == nil {
				return t
			}
		}
	}

	return time.Time{}
}
