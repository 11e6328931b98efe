// app_api_health.go - 后端健康检查 API (Wails Bindings)

package main

import (
	"context"
	"errors"
	"time"

	"flowdesk/internal/health"
	"flowdesk/internal/store"
)

// CheckBackendHealth 对后端健康端点执行一次有界超时的检查
// 成功要求 2xx 状态码且响应体可解析；失败收敛为三种可读错误串之一
// 每次调用独立拥有自己的请求生命周期，并发调用互不影响
func (a *App) CheckBackendHealth() (*health.HealthResponse, error) {
	a.mu.RLock()
	prober := a.prober
	a.mu.RUnlock()

	if prober == nil {
		return nil, errors.New("Failed to connect to backend: prober not initialized")
	}

	result := prober.Probe(context.Background())

	// 历史落库与事件推送都不阻塞命令返回
	go a.recordProbe(result)

	if result.Err != nil {
		return nil, result.Err
	}
	return &health.HealthResponse{Status: result.Status}, nil
}

// GetHealthHistory 获取最近的健康检查历史
func (a *App) GetHealthHistory(limit int) ([]*store.ProbeRecord, error) {
	a.mu.RLock()
	probeStore := a.probeStore
	a.mu.RUnlock()

	if probeStore == nil {
		return nil, errors.New("健康检查历史未启用")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return probeStore.Recent(ctx, limit)
}

// recordProbe 把一次探测结果写入历史并推送到前端
func (a *App) recordProbe(result health.Result) {
	record := &store.ProbeRecord{
		Healthy:    result.Healthy,
		Status:     result.Status,
		HTTPStatus: result.HTTPStatus,
		LatencyMs:  result.Latency.Milliseconds(),
		CheckedAt:  result.CheckedAt,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}

	a.mu.RLock()
	probeStore := a.probeStore
	a.mu.RUnlock()

	if probeStore != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := probeStore.Insert(ctx, record); err != nil {
			a.logger.Warn("⚠️ 写入健康检查历史失败", "error", err)
		}
	}

	a.emitHealthUpdate(record)
}
