// Package window 管理应用的逻辑窗口（主窗口、启动屏）
// 窗口句柄由 Wails 运行时持有，这里只保存按名字查找的能力
package window

import "errors"

// 逻辑窗口名
const (
	NameMain   = "main"
	NameSplash = "splashscreen"
)

// ErrNotFound 窗口不存在（从未创建或已关闭）
// 这是正常的预期结果，调用方不应把它升级为致命错误
var ErrNotFound = errors.New("window not found")

// State 窗口可见性状态
type State int32

const (
	StateUninitialized State = iota
	StateShown
	StateHidden
	StateClosed // 终态：不可重新打开
)

func (s State) String() string {
	switch s {
	case StateShown:
		return "shown"
	case StateHidden:
		return "hidden"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Window 一个逻辑窗口
// Show/Hide 在 Closed 之后调用返回错误；Hide 后窗口仍驻留，可再次 Show
type Window interface {
	Name() string
	State() State

	// Show 置为可见并请求焦点
	Show() error

	// Hide 置为隐藏（窗口不销毁）
	Hide() error

	// Close 关闭窗口，进入终态
	Close() error
}
