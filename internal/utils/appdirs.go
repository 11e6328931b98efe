// appdirs.go - 应用目录解析
// 日志、数据库等文件统一放在各平台约定的应用数据目录下

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appDirName = "FlowDesk"

// GetAppDataDir 返回应用数据根目录
// macOS: ~/Library/Application Support/FlowDesk
// Windows: %APPDATA%\FlowDesk
// Linux: ~/.config/flowdesk (遵循 XDG)
func GetAppDataDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return appDirName
		}
		return filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName)
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return appDirName
		}
		return filepath.Join(home, "AppData", "Roaming", appDirName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "flowdesk")
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "flowdesk"
		}
		return filepath.Join(home, ".config", "flowdesk")
	}
}

// GetDataDir 返回数据目录（SQLite 数据库等）
func GetDataDir() string {
	return filepath.Join(GetAppDataDir(), "data")
}

// GetLogDir 返回日志目录
func GetLogDir() string {
	return filepath.Join(GetAppDataDir(), "logs")
}

// EnsureAppDirs 创建应用目录（幂等）
func EnsureAppDirs() error {
	for _, dir := range []string{GetAppDataDir(), GetDataDir(), GetLogDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建目录失败 %s: %w", dir, err)
		}
	}
	return nil
}
