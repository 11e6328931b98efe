// app.go - Wails 应用核心结构
// 封装所有业务组件，提供生命周期管理

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"flowdesk/config"
	"flowdesk/internal/frontend"
	"flowdesk/internal/health"
	"flowdesk/internal/lifecycle"
	"flowdesk/internal/logging"
	"flowdesk/internal/store"
	"flowdesk/internal/transport"
	"flowdesk/internal/tray"
	"flowdesk/internal/utils"
	"flowdesk/internal/window"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App 是 Wails 应用的核心结构
// 进程级状态（托盘、窗口注册表）统一由它持有，通过依赖注入传给各组件
type App struct {
	// Wails 上下文
	ctx context.Context

	// 配置与日志
	config        *config.Config
	configWatcher *config.ConfigWatcher
	logger        *slog.Logger
	logHandler    *logging.BroadcastHandler
	logEmitter    *logging.EventEmitter
	simpleHandler *SimpleHandler

	// 出站与健康检查
	httpClient *http.Client
	prober     *health.Prober

	// 健康检查历史 (SQLite)
	probeDB    *sql.DB
	probeStore store.ProbeStore

	// 窗口/托盘生命周期
	windows   *window.Registry
	lifecycle *lifecycle.Controller
	trayCtrl  tray.Controller

	// 应用状态
	startTime time.Time
	debugMode bool

	// 并发控制
	mu       sync.RWMutex
	quitting int32
}

// NewApp 创建应用实例
func NewApp() *App {
	return &App{
		startTime: time.Now(),
	}
}

// bootstrap 在 wails.Run 之前执行的初始化
// 窗口标题、尺寸和前端代理都依赖这里加载的配置
func (a *App) bootstrap() error {
	// 1. 加载配置
	if err := a.loadConfig(); err != nil {
		return err
	}

	// 2. 初始化日志
	a.setupLogger()

	a.logger.Info("🚀 FlowDesk 启动中...",
		"version", Version,
		"backend", a.config.App.BackendURL)

	// 3. 出站 HTTP 客户端（健康检查与前端代理共用底层 Transport）
	client, err := transport.NewClient(a.config, 0)
	if err != nil {
		return fmt.Errorf("创建出站客户端失败: %w", err)
	}
	a.httpClient = client
	a.logger.Info("🔗 " + transport.GetProxyInfo(a.config))

	// 4. 健康探测器
	a.prober = health.NewProber(client, a.config.HealthURL(), a.config.App.HealthTimeout, a.logger)

	return nil
}

// buildFrontendHandler 构建挂载到 AssetServer 的远程前端代理
func (a *App) buildFrontendHandler() (http.Handler, error) {
	return frontend.NewHandler(a.config, a.httpClient, a.logger)
}

// startup 在 Wails 应用启动时调用
func (a *App) startup(ctx context.Context) {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	// 1. 注册逻辑窗口（主窗口 + 启动屏覆盖层）
	a.windows = window.NewRegistry(a.logger)
	a.windows.Register(window.NewMainWindow(ctx))
	a.windows.Register(window.NewSplashWindow(ctx))

	// 2. 生命周期控制器（关闭到托盘策略跟随托盘开关）
	a.lifecycle = lifecycle.NewController(lifecycle.Options{
		Windows:     a.windows,
		Logger:      a.logger,
		CloseToTray: a.config.Tray.Enabled,
		Quit:        a.quit,
		OpenDevTools: func() {
			if a.debugMode {
				a.logger.Debug("🔧 调试构建：开发者工具已随启动打开")
			}
		},
	})

	// 3. 初始化健康检查历史存储 (SQLite)
	a.setupProbeStore()

	// 4. 启动系统托盘（整个进程生命周期只创建这一次）
	a.setupTray(ctx)

	// 5. 配置热重载回调
	a.setupConfigReload()

	// 6. 启动完成：显示主窗口
	a.lifecycle.Dispatch(lifecycle.StartupEvent{})

	a.logger.Info("✅ FlowDesk 启动完成",
		"tray", a.config.Tray.Enabled,
		"health_history", a.config.HealthHistory.Enabled)
}

// domReady 在前端 DOM 准备就绪时调用
func (a *App) domReady(ctx context.Context) {
	// 前端就绪后才开始推日志事件
	if a.logEmitter != nil {
		a.logEmitter.Start(ctx)
	}

	a.emitSystemStatus()
}

// beforeClose 在窗口关闭前调用，返回 true 阻止关闭
// 托盘模式下关闭按钮被劫持为隐藏（两阶段：拦截默认关闭，再执行隐藏）
func (a *App) beforeClose(ctx context.Context) bool {
	// 托盘「退出」已经走了 quit 收口，这里直接放行
	if atomic.LoadInt32(&a.quitting) == 1 {
		return false
	}

	if a.lifecycle != nil && a.lifecycle.HandleCloseRequested() {
		return true
	}
	return false
}

// quit 托盘「退出」动作：标记退出中并触发 Wails 关闭流程
func (a *App) quit() {
	if !atomic.CompareAndSwapInt32(&a.quitting, 0, 1) {
		return
	}

	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()

	if ctx == nil {
		os.Exit(0)
	}

	// Quit 可能触发同步回调，不要阻塞调用方（托盘事件协程）
	go runtime.Quit(ctx)
}

// shutdown 在 Wails 应用关闭时调用
func (a *App) shutdown(ctx context.Context) {
	a.mu.Lock()
	logger := a.logger
	trayCtrl := a.trayCtrl
	probeDB := a.probeDB
	configWatcher := a.configWatcher
	logEmitter := a.logEmitter
	simpleHandler := a.simpleHandler
	a.trayCtrl = nil
	a.probeDB = nil
	a.mu.Unlock()

	if logger != nil {
		logger.Info("🛑 正在关闭 FlowDesk...")
	}

	// 1. 收口窗口状态
	if a.windows != nil {
		if w, err := a.windows.Get(window.NameMain); err == nil {
			_ = w.Close()
		}
	}

	// 2. 停止托盘
	if trayCtrl != nil {
		trayCtrl.Stop()
	}

	// 3. 关闭健康检查历史数据库
	if probeDB != nil {
		if err := probeDB.Close(); err != nil && logger != nil {
			logger.Error("健康检查历史数据库关闭失败", "error", err)
		}
	}

	// 4. 关闭配置监听
	if configWatcher != nil {
		_ = configWatcher.Close()
	}

	// 5. 停止日志事件发射器并刷掉文件缓冲
	if logEmitter != nil {
		logEmitter.Stop()
	}
	if simpleHandler != nil {
		_ = simpleHandler.Close()
	}

	if logger != nil {
		logger.Info("✅ FlowDesk 已关闭")
	}
}

// loadConfig 加载配置
// 优先使用应用数据目录下的用户配置（带热重载），否则回退到嵌入默认配置
func (a *App) loadConfig() error {
	tempLogger := slog.Default()

	if err := utils.EnsureAppDirs(); err != nil {
		tempLogger.Warn("⚠️ 无法创建应用目录", "error", err)
	}

	userConfigPath := filepath.Join(utils.GetAppDataDir(), "config.yaml")
	if _, err := os.Stat(userConfigPath); err == nil {
		configWatcher, err := config.NewConfigWatcher(userConfigPath, tempLogger)
		if err != nil {
			return fmt.Errorf("无法加载用户配置: %w", err)
		}
		a.configWatcher = configWatcher
		a.config = configWatcher.GetConfig()
		tempLogger.Info("📝 已加载用户配置", "path", userConfigPath)
	} else {
		cfg, err := config.ParseConfig(defaultConfigContent)
		if err != nil {
			return fmt.Errorf("嵌入配置无效: %w", err)
		}
		a.config = cfg
		tempLogger.Info("📝 从嵌入配置加载")
	}

	// 路径统一覆盖到用户目录（在任何组件初始化之前）
	a.config.Logging.FilePath = filepath.Join(utils.GetLogDir(), "app.log")
	a.config.HealthHistory.DatabasePath = filepath.Join(utils.GetDataDir(), "flowdesk.db")

	return nil
}

// setupLogger 设置日志
func (a *App) setupLogger() {
	logger, broadcastHandler, simpleHandler := setupLogger(a.config.Logging)
	a.logger = logger
	slog.SetDefault(logger)

	a.logHandler = broadcastHandler
	a.logEmitter = broadcastHandler.Emitter
	a.simpleHandler = simpleHandler

	if a.configWatcher != nil {
		a.configWatcher.UpdateLogger(logger)
	}

	a.logger.Info("✅ 日志系统初始化完成",
		"level", a.config.Logging.Level,
		"file_enabled", a.config.Logging.FileEnabled)
}

// setupProbeStore 初始化健康检查历史存储 (SQLite)
func (a *App) setupProbeStore() {
	if !a.config.HealthHistory.Enabled {
		a.logger.Info("健康检查历史未启用，跳过初始化")
		return
	}

	db, err := store.OpenDatabase(a.config.HealthHistory.DatabasePath)
	if err != nil {
		a.logger.Error("❌ 打开健康检查历史数据库失败", "error", err)
		return
	}

	probeStore := store.NewSQLiteProbeStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := probeStore.InitSchema(ctx); err != nil {
		a.logger.Error("❌ 初始化健康检查历史表失败", "error", err)
		db.Close()
		return
	}

	a.mu.Lock()
	a.probeDB = db
	a.probeStore = probeStore
	a.mu.Unlock()

	// 启动时清理过期历史
	if days := a.config.HealthHistory.RetentionDays; days > 0 {
		if deleted, err := probeStore.Prune(ctx, time.Now().AddDate(0, 0, -days)); err != nil {
			a.logger.Warn("⚠️ 清理健康检查历史失败", "error", err)
		} else if deleted > 0 {
			a.logger.Info("🧹 已清理过期健康检查历史", "count", deleted)
		}
	}

	a.logger.Info("✅ 健康检查历史已启用 (SQLite)",
		"path", a.config.HealthHistory.DatabasePath)
}

// setupTray 启动系统托盘，交互统一汇入生命周期控制器
func (a *App) setupTray(ctx context.Context) {
	if !a.config.Tray.Enabled {
		a.logger.Info("托盘未启用，主窗口关闭即退出")
		return
	}

	ctrl, err := tray.Start(ctx, tray.Options{
		Icon:    icon,
		Tooltip: a.config.Tray.Tooltip,
		OnShow: func() {
			a.lifecycle.Dispatch(lifecycle.TrayEvent{Kind: lifecycle.TrayShow})
		},
		OnHide: func() {
			a.lifecycle.Dispatch(lifecycle.TrayEvent{Kind: lifecycle.TrayHide})
		},
		OnQuit: func() {
			a.lifecycle.Dispatch(lifecycle.TrayEvent{Kind: lifecycle.TrayQuit})
		},
	})
	if err != nil {
		a.logger.Error("❌ 托盘启动失败", "error", err)
		a.emitNotification("error", "托盘不可用", "系统托盘启动失败，可通过前端菜单重新显示主窗口")
		return
	}

	a.trayCtrl = ctrl
	a.logger.Info("✅ 系统托盘已启动", "tooltip", a.config.Tray.Tooltip)
}

// setupConfigReload 注册配置热重载回调（仅动态项）
func (a *App) setupConfigReload() {
	if a.configWatcher == nil {
		return
	}

	a.configWatcher.AddReloadCallback(func(newConfig *config.Config) {
		a.mu.Lock()
		a.config = newConfig
		a.mu.Unlock()

		if a.simpleHandler != nil {
			a.simpleHandler.SetLevel(newConfig.Logging.Level)
		}

		a.emitSystemStatus()
	})
}

// getConfig 并发安全地取当前配置
func (a *App) getConfig() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}
