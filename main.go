// main.go - FlowDesk Wails 应用入口
// 原生壳承载远程 Studio 前端：窗口/托盘生命周期 + 桥接命令

package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"flowdesk/config"
	"flowdesk/internal/logging"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

// 版本信息（构建时通过 -ldflags 注入）
var (
	Version   = "1.4.0"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// 命令行参数
var (
	showVersion = flag.Bool("version", false, "显示版本信息")
	debugMode   = flag.Bool("debug", false, "启动后自动打开开发者工具")
)

// 嵌入应用图标
//
//go:embed build/appicon.png
var icon []byte

// 嵌入默认配置文件
//
//go:embed config/config.yaml
var defaultConfigContent []byte

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("FlowDesk\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Built: %s\n", BuildTime)
		os.Exit(0)
	}

	// 创建应用实例并完成 Wails 启动前的初始化
	// （窗口标题/尺寸和前端代理都依赖配置，必须先于 wails.Run 准备好）
	app := NewApp()
	app.debugMode = *debugMode
	if err := app.bootstrap(); err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}

	frontendHandler, err := app.buildFrontendHandler()
	if err != nil {
		fmt.Fprintf(os.Stderr, "前端代理初始化失败: %v\n", err)
		os.Exit(1)
	}

	cfg := app.config

	// 运行 Wails 应用
	err = wails.Run(&options.App{
		Title:     cfg.App.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		MinWidth:  cfg.Window.MinWidth,
		MinHeight: cfg.Window.MinHeight,

		// 窗口由生命周期控制器在启动完成后显示
		StartHidden: true,

		// 远程前端经本地反向代理进入 webview
		AssetServer: &assetserver.Options{
			Handler: frontendHandler,
		},

		// 背景色 (加载时显示)
		BackgroundColour: &options.RGBA{R: 24, G: 24, B: 32, A: 1},

		// 生命周期回调
		OnStartup:     app.startup,
		OnDomReady:    app.domReady,
		OnBeforeClose: app.beforeClose,
		OnShutdown:    app.shutdown,

		// 绑定到前端的方法
		Bind: []interface{}{
			app,
		},

		// 调试构建：启动时打开开发者工具
		Debug: options.Debug{
			OpenInspectorOnStartup: *debugMode,
		},

		// macOS 配置
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   cfg.App.Title,
				Message: fmt.Sprintf("FlowDesk Studio 桌面客户端\n版本 %s", Version),
				Icon:    icon,
			},
			WebviewIsTransparent: true,
		},

		// Windows 配置
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
			DisableWindowIcon:    false,
		},
	})

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// ============================================================
// 日志相关
// ============================================================

// setupLogger 配置结构化日志：控制台 + 可选文件轮转，外层再包广播
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, *logging.BroadcastHandler, *SimpleHandler) {
	level := new(slog.LevelVar)
	level.Set(parseLogLevel(cfg.Level))

	var fileRotator *logging.FileRotator
	if cfg.FileEnabled {
		maxSize, err := logging.ParseSize(cfg.MaxFileSize)
		if err != nil {
			fmt.Printf("警告：无法解析日志文件大小配置 '%s'，使用默认值 100MB: %v\n", cfg.MaxFileSize, err)
			maxSize = 100 * 1024 * 1024
		}

		fileRotator, err = logging.NewFileRotator(cfg.FilePath, maxSize, cfg.MaxFiles, cfg.CompressRotated)
		if err != nil {
			fmt.Printf("警告：无法创建日志文件轮转器: %v\n", err)
			fileRotator = nil
		}
	}

	simpleHandler := &SimpleHandler{
		level:       level,
		fileRotator: fileRotator,
	}

	broadcastHandler := logging.NewBroadcastHandler(simpleHandler, 1000)

	if cfg.FileEnabled {
		fmt.Printf("🔧 文件日志已启用: 路径=%s\n", cfg.FilePath)
	}

	return slog.New(broadcastHandler), broadcastHandler, simpleHandler
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SimpleHandler 简化的日志处理器（控制台 + 文件）
type SimpleHandler struct {
	level       *slog.LevelVar
	fileRotator *logging.FileRotator
}

func (h *SimpleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SimpleHandler) Handle(_ context.Context, r slog.Record) error {
	message := r.Message

	var attrs []string
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})

	if len(attrs) > 0 {
		message = message + " " + strings.Join(attrs, " ")
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	pid := os.Getpid()
	gid := getGoroutineID()
	level := "INFO"
	switch r.Level {
	case slog.LevelDebug:
		level = "DEBUG"
	case slog.LevelWarn:
		level = "WARN"
	case slog.LevelError:
		level = "ERROR"
	}

	if len(message) > 500 {
		message = message[:500] + "... (截断)"
	}

	line := fmt.Sprintf("[%s] [PID:%d] [GID:%d] [%s] %s", timestamp, pid, gid, level, message)

	if h.fileRotator != nil {
		h.fileRotator.Write([]byte(line + "\n"))
	}
	fmt.Println(line)

	return nil
}

func (h *SimpleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h
}

func (h *SimpleHandler) WithGroup(name string) slog.Handler {
	return h
}

// SetLevel 动态调整日志级别（配置热重载）
func (h *SimpleHandler) SetLevel(s string) {
	h.level.Set(parseLogLevel(s))
}

func (h *SimpleHandler) Close() error {
	if h.fileRotator != nil {
		h.fileRotator.Sync()
		return h.fileRotator.Close()
	}
	return nil
}

func getGoroutineID() int {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	idField := strings.Fields(string(buf))[1]
	id, err := strconv.Atoi(idField)
	if err != nil {
		return 0
	}
	return id
}
