package lifecycle

import (
	"errors"
	"fmt"
	"log/slog"

	"flowdesk/internal/window"
)

// Controller 生命周期控制器
// 订阅宿主事件（启动、窗口关闭请求、托盘点击），驱动窗口/托盘状态变迁。
// 事件在宿主的 UI 事件循环上逐个到达，处理不可重入，无需额外加锁。
//
// 两级错误语义：
//   - 宿主事件路径（Dispatch）：目标窗口缺失只记 error 日志，继续处理
//   - 调用方路径（ShowMain 等）：缺失作为描述性错误返回给桥接调用方
type Controller struct {
	windows *window.Registry
	logger  *slog.Logger

	// closeToTray 为 true 时主窗口的关闭请求被拦截为隐藏
	closeToTray bool

	// quit 进程退出动作（托盘「退出」专用）
	quit func()

	// openDevTools 调试构建下启动完成后打开开发者工具（可为 nil）
	openDevTools func()
}

// Options 控制器依赖
type Options struct {
	Windows      *window.Registry
	Logger       *slog.Logger
	CloseToTray  bool
	Quit         func()
	OpenDevTools func()
}

// NewController 创建生命周期控制器
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quit := opts.Quit
	if quit == nil {
		quit = func() {}
	}
	return &Controller{
		windows:      opts.Windows,
		logger:       logger,
		closeToTray:  opts.CloseToTray,
		quit:         quit,
		openDevTools: opts.OpenDevTools,
	}
}

// CloseToTray 返回关闭到托盘策略是否生效
func (c *Controller) CloseToTray() bool {
	return c.closeToTray
}

// Dispatch 分发一个宿主事件
// 封闭事件集合穷举匹配；所有失败就地恢复（记日志后继续），绝不 panic
func (c *Controller) Dispatch(e Event) {
	switch ev := e.(type) {
	case StartupEvent:
		c.handleStartup()
	case SplashCloseEvent:
		c.handleSplashClose()
	case CloseRequestedEvent:
		// 事件路径上的关闭请求：等价于宿主回调进入 HandleCloseRequested
		c.HandleCloseRequested()
	case TrayEvent:
		c.handleTray(ev.Kind)
	default:
		c.logger.Error("❌ [生命周期] 未知事件", "event", e.eventName())
	}
}

// handleStartup 启动完成：显示主窗口，调试构建下打开开发者工具
func (c *Controller) handleStartup() {
	c.windows.Show(window.NameMain)
	if c.openDevTools != nil {
		c.openDevTools()
	}
	c.logger.Info("✅ [生命周期] 启动完成，主窗口已显示")
}

// handleSplashClose 启动屏关闭请求
// 固定顺序：先尝试关启动屏，再显示主窗口；两步相互独立 best-effort，
// 启动屏已经不在（重复触发等）不会阻止主窗口显示
func (c *Controller) handleSplashClose() {
	_ = c.windows.Close(window.NameSplash)
	c.windows.Show(window.NameMain)
}

// HandleCloseRequested 主窗口关闭请求
// 返回 true 表示拦截默认关闭（关闭到托盘：窗口转为隐藏，进程存活）
// 返回 false 表示放行默认关闭流程
func (c *Controller) HandleCloseRequested() bool {
	if !c.closeToTray {
		return false
	}

	c.windows.Hide(window.NameMain)
	c.logger.Info("📥 [生命周期] 关闭请求已拦截，主窗口隐藏到托盘")
	return true
}

// handleTray 托盘交互分发
// 显示/隐藏只作用于主窗口，绝不触碰启动屏
func (c *Controller) handleTray(kind TrayKind) {
	switch kind {
	case TrayActivate, TrayShow:
		c.windows.Show(window.NameMain)
	case TrayHide:
		c.windows.Hide(window.NameMain)
	case TrayQuit:
		c.logger.Info("🛑 [生命周期] 托盘退出，进程终止")
		c.quit()
	default:
		c.logger.Error("❌ [生命周期] 未知托盘事件", "kind", kind)
	}
}

// ShowMain 调用方路径的显示主窗口
// 与宿主事件不同：窗口缺失时返回错误，调用方（前端）可以据此提示用户
func (c *Controller) ShowMain() error {
	w, err := c.windows.Get(window.NameMain)
	if err != nil {
		return errors.New("Main window not found")
	}
	if err := w.Show(); err != nil {
		return errors.New("Main window not found")
	}
	return nil
}

// HideMain 调用方路径的隐藏主窗口
func (c *Controller) HideMain() error {
	w, err := c.windows.Get(window.NameMain)
	if err != nil {
		return errors.New("Main window not found")
	}
	if err := w.Hide(); err != nil {
		return fmt.Errorf("failed to hide main window: %v", err)
	}
	return nil
}

// CloseSplash 调用方路径的关闭启动屏
// 前端加载完成后调用；内部复用事件路径的固定顺序（先关再显示主窗口）
func (c *Controller) CloseSplash() error {
	c.handleSplashClose()
	return nil
}
