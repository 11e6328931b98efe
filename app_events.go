// app_events.go - Wails 事件发射
// 将 Go 后端状态变化通知到前端

package main

import (
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"flowdesk/internal/store"
)

// 事件名称常量
const (
	EventSystemStatus = "system:status"
	EventHealthUpdate = "health:update"
	EventNotification = "notification"
)

// emitSystemStatus 发送系统状态更新到前端
func (a *App) emitSystemStatus() {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx == nil {
		return
	}

	runtime.EventsEmit(ctx, EventSystemStatus, a.GetSystemStatus())
}

// emitHealthUpdate 发送一次健康检查结果到前端
func (a *App) emitHealthUpdate(record *store.ProbeRecord) {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx == nil {
		return
	}

	runtime.EventsEmit(ctx, EventHealthUpdate, record)
}

// emitNotification 发送通知到前端
func (a *App) emitNotification(level, title, message string) {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx == nil {
		return
	}

	runtime.EventsEmit(ctx, EventNotification, map[string]string{
		"level":   level, // "info", "warning", "error", "success"
		"title":   title,
		"message": message,
	})
}
