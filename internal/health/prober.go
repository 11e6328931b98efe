// Package health 后端健康探测
// 单次有界超时的出站请求：成功 = 2xx 状态码且响应体可解析为 HealthResponse
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"flowdesk/internal/utils"
)

// 响应体读取上限；健康响应应该只有几十字节，超限视为异常输入
const maxResponseBytes = 1 << 20

// HealthResponse 后端健康端点返回的 JSON 结构
type HealthResponse struct {
	Status string `json:"status"`
}

// Result 单次探测结果（含持久化历史需要的信息）
type Result struct {
	Healthy    bool
	Status     string // 响应体里的 status 字段（失败时为空）
	HTTPStatus int    // HTTP 状态码（未连上时为 0）
	Latency    time.Duration
	CheckedAt  time.Time
	Err        error
}

// Prober 健康探测器
// 每次调用独立拥有自己的请求生命周期，并发调用之间不共享可变状态
type Prober struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewProber 创建探测器
// url 为完整健康检查地址；timeout 为单次探测上限（到期按连接失败处理，不挂起）
func NewProber(client *http.Client, url string, timeout time.Duration, logger *slog.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prober{
		client:  client,
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

// URL 返回探测地址
func (p *Prober) URL() string { return p.url }

// Check 执行一次健康检查
// 失败返回 *ConnectError / *StatusError / *ParseError 之一；无重试
func (p *Prober) Check(ctx context.Context) (*HealthResponse, error) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		// 超时也走这条路径：表现为连接失败，而不是挂起
		return nil, &ConnectError{Err: err}
	}
	defer resp.Body.Close()

	// 只认 2xx
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	// 响应体按不可信输入处理：坏 JSON 是受控错误，不是崩溃
	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil {
		return nil, &ParseError{Err: err}
	}

	return &health, nil
}

// Probe 执行一次健康检查并带上耗时等元信息（用于历史记录与事件推送）
func (p *Prober) Probe(ctx context.Context) Result {
	start := time.Now()
	resp, err := p.Check(ctx)
	result := Result{
		Latency:   time.Since(start),
		CheckedAt: start,
		Err:       err,
	}

	if err != nil {
		if se, ok := err.(*StatusError); ok {
			result.HTTPStatus = se.StatusCode
		}
		p.logger.Warn(fmt.Sprintf("❌ [健康检查] 后端不可用: %v - 耗时: %s",
			err, utils.FormatResponseTime(result.Latency)))
		return result
	}

	result.Healthy = true
	result.Status = resp.Status
	result.HTTPStatus = http.StatusOK
	p.logger.Debug(fmt.Sprintf("✅ [健康检查] 后端正常: %s - 耗时: %s",
		resp.Status, utils.FormatResponseTime(result.Latency)))
	return result
}
