package tray

import "context"

// Controller 表示托盘控制器（用于停止托盘）。
// 托盘图标创建后存活于整个进程生命周期，Stop 仅在进程退出收尾时调用。
type Controller interface {
	Stop()
}

// Options 托盘启动参数。
// 菜单固定为：显示、隐藏、分隔线、退出。
type Options struct {
	// Icon 托盘图标内容（Windows 推荐 .ico 字节；其它平台可忽略）。
	Icon []byte

	// Tooltip 托盘悬浮提示文本。
	Tooltip string

	// OnShow 用户希望显示主窗口时触发（点击托盘图标/「显示」菜单）。
	OnShow func()

	// OnHide 用户希望隐藏主窗口时触发（「隐藏」菜单）。
	OnHide func()

	// OnQuit 用户选择「退出」时触发。
	OnQuit func()
}

// Start 启动系统托盘（平台相关实现）。
func Start(ctx context.Context, opts Options) (Controller, error) {
	return start(ctx, opts)
}
