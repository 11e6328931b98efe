package window

import (
	"fmt"
	"log/slog"
	"sync"
)

// Registry 逻辑窗口名 → 窗口句柄
// 每次使用都按名字重新解析，不跨挂起点缓存句柄
type Registry struct {
	mu      sync.RWMutex
	windows map[string]Window
	logger  *slog.Logger
}

// NewRegistry 创建窗口注册表
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		windows: make(map[string]Window),
		logger:  logger,
	}
}

// Register 注册一个窗口（同名覆盖，保证同名最多一个活动窗口）
func (r *Registry) Register(w Window) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.windows[w.Name()] = w
}

// Remove 移除一个窗口（窗口进入终态后调用）
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.windows, name)
}

// Get 按名字解析窗口；不存在或已关闭返回 ErrNotFound
// 不阻塞
func (r *Registry) Get(name string) (Window, error) {
	r.mu.RLock()
	w, ok := r.windows[name]
	r.mu.RUnlock()

	if !ok || w.State() == StateClosed {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return w, nil
}

// Show 显示窗口并请求焦点；窗口不存在时只记日志，不向上传播
// 宿主事件路径使用这个变体（事件没有等待结果的调用方）
func (r *Registry) Show(name string) {
	w, err := r.Get(name)
	if err != nil {
		r.logger.Error("❌ [窗口] 显示失败", "window", name, "error", err)
		return
	}
	if err := w.Show(); err != nil {
		r.logger.Error("❌ [窗口] 显示失败", "window", name, "error", err)
	}
}

// Hide 隐藏窗口；窗口不存在时只记日志，不向上传播
func (r *Registry) Hide(name string) {
	w, err := r.Get(name)
	if err != nil {
		r.logger.Error("❌ [窗口] 隐藏失败", "window", name, "error", err)
		return
	}
	if err := w.Hide(); err != nil {
		r.logger.Error("❌ [窗口] 隐藏失败", "window", name, "error", err)
	}
}

// Close 关闭窗口（终态）；不存在时只记日志
// 返回值仅表示本次尝试是否成功，调用方可以忽略（best-effort 语义）
func (r *Registry) Close(name string) error {
	w, err := r.Get(name)
	if err != nil {
		r.logger.Error("❌ [窗口] 关闭失败", "window", name, "error", err)
		return err
	}
	if err := w.Close(); err != nil {
		r.logger.Error("❌ [窗口] 关闭失败", "window", name, "error", err)
		return err
	}
	return nil
}

// States 返回当前所有窗口的状态快照（用于状态上报）
func (r *Registry) States() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make(map[string]string, len(r.windows))
	for name, w := range r.windows {
		states[name] = w.State().String()
	}
	return states
}
