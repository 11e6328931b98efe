// wails_window.go - Wails 运行时实际窗口实现
// Wails v2 只有一个原生窗口；启动屏是前端覆盖层，通过事件驱动其显隐与关闭

package window

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 发给前端启动屏覆盖层的事件名
const (
	EventSplashShow  = "splash:show"
	EventSplashHide  = "splash:hide"
	EventSplashClose = "splash:close"
)

// MainWindow 原生主窗口，由 Wails 运行时托管
type MainWindow struct {
	ctx   context.Context
	state int32 // atomic State
}

// NewMainWindow 包装 Wails 主窗口
// ctx 为 Wails startup 回调传入的应用生命周期上下文
func NewMainWindow(ctx context.Context) *MainWindow {
	return &MainWindow{ctx: ctx, state: int32(StateUninitialized)}
}

func (w *MainWindow) Name() string { return NameMain }

func (w *MainWindow) State() State {
	return State(atomic.LoadInt32(&w.state))
}

// Show 显示主窗口并请求焦点（还原最小化状态）
func (w *MainWindow) Show() error {
	if w.State() == StateClosed {
		return fmt.Errorf("%w: %s (已关闭)", ErrNotFound, NameMain)
	}
	runtime.WindowShow(w.ctx)
	runtime.WindowUnminimise(w.ctx)
	atomic.StoreInt32(&w.state, int32(StateShown))
	return nil
}

// Hide 隐藏主窗口；窗口仍驻留，可再次 Show
func (w *MainWindow) Hide() error {
	if w.State() == StateClosed {
		return fmt.Errorf("%w: %s (已关闭)", ErrNotFound, NameMain)
	}
	runtime.WindowHide(w.ctx)
	atomic.StoreInt32(&w.state, int32(StateHidden))
	return nil
}

// Close 标记主窗口进入终态
// 原生窗口随进程退出销毁，这里只收口状态（仅在 shutdown 路径调用）
func (w *MainWindow) Close() error {
	atomic.StoreInt32(&w.state, int32(StateClosed))
	return nil
}

// SplashWindow 前端启动屏覆盖层
// 后端只持有让前端显隐/移除覆盖层的事件通道，状态机与原生窗口一致
type SplashWindow struct {
	ctx   context.Context
	state int32 // atomic State
}

// NewSplashWindow 包装启动屏；启动时前端覆盖层默认可见
func NewSplashWindow(ctx context.Context) *SplashWindow {
	return &SplashWindow{ctx: ctx, state: int32(StateShown)}
}

func (w *SplashWindow) Name() string { return NameSplash }

func (w *SplashWindow) State() State {
	return State(atomic.LoadInt32(&w.state))
}

func (w *SplashWindow) Show() error {
	if w.State() == StateClosed {
		return fmt.Errorf("%w: %s (已关闭)", ErrNotFound, NameSplash)
	}
	runtime.EventsEmit(w.ctx, EventSplashShow)
	atomic.StoreInt32(&w.state, int32(StateShown))
	return nil
}

func (w *SplashWindow) Hide() error {
	if w.State() == StateClosed {
		return fmt.Errorf("%w: %s (已关闭)", ErrNotFound, NameSplash)
	}
	runtime.EventsEmit(w.ctx, EventSplashHide)
	atomic.StoreInt32(&w.state, int32(StateHidden))
	return nil
}

// Close 移除启动屏覆盖层，进入终态；重复 Close 返回 ErrNotFound
func (w *SplashWindow) Close() error {
	if !atomic.CompareAndSwapInt32(&w.state, int32(StateShown), int32(StateClosed)) &&
		!atomic.CompareAndSwapInt32(&w.state, int32(StateHidden), int32(StateClosed)) {
		return fmt.Errorf("%w: %s (已关闭)", ErrNotFound, NameSplash)
	}
	runtime.EventsEmit(w.ctx, EventSplashClose)
	return nil
}
