// app_api_window.go - 窗口控制与外部链接 (Wails Bindings)
// 这些是调用方路径：与宿主事件不同，失败会作为描述性错误返回给前端

package main

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// ShowMainWindow 显示主窗口
// 主窗口不存在时返回错误（前端可以据此提示用户），不做静默处理
func (a *App) ShowMainWindow() error {
	if a.lifecycle == nil {
		return errors.New("Main window not found")
	}
	return a.lifecycle.ShowMain()
}

// HideMainWindow 隐藏主窗口到托盘（窗口驻留，可再次显示）
func (a *App) HideMainWindow() error {
	if a.lifecycle == nil {
		return errors.New("Main window not found")
	}
	return a.lifecycle.HideMain()
}

// CloseSplashscreen 关闭启动屏
// 前端加载完成后调用；固定顺序先关启动屏再显示主窗口，
// 启动屏已经不在时不算失败（重复调用安全）
func (a *App) CloseSplashscreen() error {
	if a.lifecycle == nil {
		return errors.New("lifecycle controller not ready")
	}
	return a.lifecycle.CloseSplash()
}

// OpenExternalURL 在系统默认浏览器中打开链接
// 失败时原样携带底层系统错误描述
func (a *App) OpenExternalURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("Failed to open URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("Failed to open URL: unsupported scheme %q", u.Scheme)
	}

	if err := openBrowser(rawURL); err != nil {
		return fmt.Errorf("Failed to open URL: %v", err)
	}

	a.logger.Info("🌐 已打开外部链接", "url", rawURL)
	return nil
}

// openBrowser 调用各平台的 shell-open 原语
func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
