// app_api.go - 暴露给前端的 API 方法 (Wails Bindings)
// 这些方法会被自动生成为 JavaScript 调用
//
// API 文件按功能模块拆分:
// - app_api.go        - 版本、问候、配置常量、系统状态 (本文件)
// - app_api_window.go - 窗口控制 + 外部链接
// - app_api_health.go - 后端健康检查 + 历史

package main

import (
	"fmt"
	"time"

	"flowdesk/internal/logging"
)

// ============================================================
// 基础 API
// ============================================================

// GetAppVersion 获取应用版本（编译期常量，进程生命周期内不变）
func (a *App) GetAppVersion() string {
	return Version
}

// Greet 问候语（纯字符串格式化，不会失败）
func (a *App) Greet(name string) string {
	return fmt.Sprintf("Hello, %s! You've been greeted from Go!", name)
}

// ============================================================
// 配置常量 API
// ============================================================

// APIConfig 前端请求后端时使用的配置
type APIConfig struct {
	BackendURL string `json:"backend_url"`
	Timeout    int64  `json:"timeout"` // 毫秒
}

// GetBackendURL 获取后端源站地址
func (a *App) GetBackendURL() string {
	return a.getConfig().App.BackendURL
}

// GetAPIConfig 获取 API 配置常量
func (a *App) GetAPIConfig() APIConfig {
	cfg := a.getConfig()
	return APIConfig{
		BackendURL: cfg.App.BackendURL,
		Timeout:    cfg.App.RequestTimeout.Milliseconds(),
	}
}

// ============================================================
// 系统状态 API
// ============================================================

// SystemStatus 系统状态结构
type SystemStatus struct {
	Version       string            `json:"version"`
	Uptime        string            `json:"uptime"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"` // ISO8601 格式的启动时间
	BackendURL    string            `json:"backend_url"`
	TrayActive    bool              `json:"tray_active"`
	DebugMode     bool              `json:"debug_mode"`
	Windows       map[string]string `json:"windows"` // 逻辑窗口名 → 可见性状态
}

// GetSystemStatus 获取系统状态
func (a *App) GetSystemStatus() SystemStatus {
	a.mu.RLock()
	trayActive := a.trayCtrl != nil
	cfg := a.config
	a.mu.RUnlock()

	uptime := time.Since(a.startTime)

	status := SystemStatus{
		Version:       Version,
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     a.startTime.Format(time.RFC3339),
		TrayActive:    trayActive,
		DebugMode:     a.debugMode,
	}

	if cfg != nil {
		status.BackendURL = cfg.App.BackendURL
	}
	if a.windows != nil {
		status.Windows = a.windows.States()
	}

	return status
}

// ============================================================
// 日志 API
// ============================================================

// GetRecentLogs 获取近期日志（前端日志面板打开时先拉一次存量）
func (a *App) GetRecentLogs() []logging.LogEntry {
	if a.logHandler == nil {
		return nil
	}
	return a.logHandler.GetRecent()
}

// ============================================================
// 辅助函数
// ============================================================

// formatDuration 人类可读的运行时长
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d秒", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d分%d秒", int(d.Minutes()), int(d.Seconds())%60)
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%d小时%d分", int(d.Hours()), int(d.Minutes())%60)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%d天%d小时", days, int(d.Hours())%24)
}
