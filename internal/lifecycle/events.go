// Package lifecycle 协调主窗口、启动屏与托盘之间的可见性状态
package lifecycle

// Event 宿主运行时产生的生命周期事件（封闭集合，Dispatch 穷举分发）
type Event interface {
	eventName() string
}

// StartupEvent 应用初始化完成
type StartupEvent struct{}

func (StartupEvent) eventName() string { return "startup" }

// SplashCloseEvent 启动屏关闭请求（前端加载完成后触发）
type SplashCloseEvent struct{}

func (SplashCloseEvent) eventName() string { return "splash_close" }

// CloseRequestedEvent 主窗口收到关闭请求（用户点了关闭按钮）
type CloseRequestedEvent struct{}

func (CloseRequestedEvent) eventName() string { return "close_requested" }

// TrayKind 托盘交互类型
type TrayKind int

const (
	TrayActivate TrayKind = iota // 左键点击托盘图标
	TrayShow                     // 菜单「显示」
	TrayHide                     // 菜单「隐藏」
	TrayQuit                     // 菜单「退出」
)

func (k TrayKind) String() string {
	switch k {
	case TrayActivate:
		return "activate"
	case TrayShow:
		return "show"
	case TrayHide:
		return "hide"
	case TrayQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// TrayEvent 托盘交互事件
type TrayEvent struct {
	Kind TrayKind
}

func (TrayEvent) eventName() string { return "tray" }
