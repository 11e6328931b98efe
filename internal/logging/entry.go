// Package logging 日志基础设施
// 文件轮转输出 + 近期日志环形缓冲 + 批量推送到前端日志面板
package logging

// LogEntry 推送给前端日志面板的单条日志
type LogEntry struct {
	Time    string `json:"time"` // "2006-01-02 15:04:05.000"
	Level   string `json:"level"`
	Message string `json:"message"`
}
