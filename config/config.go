package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App           AppConfig           `yaml:"app"`
	Window        WindowConfig        `yaml:"window"`
	Tray          TrayConfig          `yaml:"tray"`
	Logging       LoggingConfig       `yaml:"logging"`
	Proxy         ProxyConfig         `yaml:"proxy"`
	HealthHistory HealthHistoryConfig `yaml:"health_history"`
}

type AppConfig struct {
	Title          string        `yaml:"title"`           // 窗口标题
	BackendURL     string        `yaml:"backend_url"`     // 远程前端/后端源站
	HealthPath     string        `yaml:"health_path"`     // 健康检查路径
	HealthTimeout  time.Duration `yaml:"health_timeout"`  // 单次健康检查超时上限
	RequestTimeout time.Duration `yaml:"request_timeout"` // 普通 API 请求超时（暴露给前端的常量）
}

type WindowConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	MinWidth  int `yaml:"min_width"`
	MinHeight int `yaml:"min_height"`
}

type TrayConfig struct {
	Enabled bool   `yaml:"enabled"` // 托盘开关；开启时主窗口关闭按钮变为隐藏到托盘
	Tooltip string `yaml:"tooltip"` // 托盘悬浮提示
}

type LoggingConfig struct {
	Level           string `yaml:"level"`
	FileEnabled     bool   `yaml:"file_enabled"`     // 是否写日志文件
	FilePath        string `yaml:"file_path"`        // 日志文件路径
	MaxFileSize     string `yaml:"max_file_size"`    // 单文件大小上限 (如 "100MB")
	MaxFiles        int    `yaml:"max_files"`        // 轮转保留文件数
	CompressRotated bool   `yaml:"compress_rotated"` // 是否压缩轮转出的旧文件
}

// ProxyConfig 出站代理配置（健康检查与前端资源代理共用）
type ProxyConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"` // http://host:port 或 socks5://host:port
}

// HealthHistoryConfig 健康检查历史存储配置 (SQLite)
type HealthHistoryConfig struct {
	Enabled       bool          `yaml:"enabled"`
	DatabasePath  string        `yaml:"database_path"`
	RetentionDays int           `yaml:"retention_days"` // 历史保留天数，0 = 不清理
	PruneInterval time.Duration `yaml:"prune_interval"`
}

// LoadConfig 从文件加载配置并填充默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig 从字节流解析配置（嵌入的默认配置走这条路径，不落盘）
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.setDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func (c *Config) setDefaults() {
	if c.App.Title == "" {
		c.App.Title = "FlowDesk"
	}
	if c.App.BackendURL == "" {
		c.App.BackendURL = "https://app.flowdesk.io"
	}
	if c.App.HealthPath == "" {
		c.App.HealthPath = "/health"
	}
	if c.App.HealthTimeout == 0 {
		c.App.HealthTimeout = 10 * time.Second
	}
	if c.App.RequestTimeout == 0 {
		c.App.RequestTimeout = 30 * time.Second
	}

	if c.Window.Width == 0 {
		c.Window.Width = 1280
	}
	if c.Window.Height == 0 {
		c.Window.Height = 800
	}
	if c.Window.MinWidth == 0 {
		c.Window.MinWidth = 1024
	}
	if c.Window.MinHeight == 0 {
		c.Window.MinHeight = 600
	}

	if c.Tray.Tooltip == "" {
		c.Tray.Tooltip = c.App.Title
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.FileEnabled && c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	if c.Logging.FileEnabled && c.Logging.MaxFileSize == "" {
		c.Logging.MaxFileSize = "100MB"
	}
	if c.Logging.FileEnabled && c.Logging.MaxFiles == 0 {
		c.Logging.MaxFiles = 10
	}

	if c.HealthHistory.DatabasePath == "" {
		c.HealthHistory.DatabasePath = "data/flowdesk.db"
	}
	if c.HealthHistory.PruneInterval == 0 {
		c.HealthHistory.PruneInterval = 24 * time.Hour
	}
}

// validate validates the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.App.BackendURL)
	if err != nil {
		return fmt.Errorf("app.backend_url 无效: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("app.backend_url 必须是 http/https 地址: %s", c.App.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("app.backend_url 缺少主机名: %s", c.App.BackendURL)
	}

	if !strings.HasPrefix(c.App.HealthPath, "/") {
		return fmt.Errorf("app.health_path 必须以 / 开头: %s", c.App.HealthPath)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level 无效: %s (可选: debug/info/warn/error)", c.Logging.Level)
	}

	if c.Proxy.Enabled {
		pu, err := url.Parse(c.Proxy.URL)
		if err != nil {
			return fmt.Errorf("proxy.url 无效: %w", err)
		}
		switch pu.Scheme {
		case "http", "https", "socks5":
		default:
			return fmt.Errorf("proxy.url 仅支持 http/https/socks5: %s", c.Proxy.URL)
		}
	}

	if c.Window.MinWidth > c.Window.Width || c.Window.MinHeight > c.Window.Height {
		return fmt.Errorf("window 最小尺寸不能大于初始尺寸")
	}

	return nil
}

// HealthURL 返回完整的健康检查地址
func (c *Config) HealthURL() string {
	return strings.TrimRight(c.App.BackendURL, "/") + c.App.HealthPath
}

// ConfigWatcher handles automatic configuration reloading
type ConfigWatcher struct {
	configPath    string
	config        *Config
	mutex         sync.RWMutex
	watcher       *fsnotify.Watcher
	logger        *slog.Logger
	callbacks     []func(*Config)
	lastModTime   time.Time
	debounceTimer *time.Timer
}

// NewConfigWatcher creates a new configuration watcher
func NewConfigWatcher(configPath string, logger *slog.Logger) (*ConfigWatcher, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}

	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cw := &ConfigWatcher{
		configPath:  configPath,
		config:      config,
		watcher:     watcher,
		logger:      logger,
		callbacks:   make([]func(*Config), 0),
		lastModTime: fileInfo.ModTime(),
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	go cw.watchLoop()

	return cw, nil
}

// GetConfig returns the current configuration (thread-safe)
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.config
}

// UpdateLogger updates the logger used by the config watcher
func (cw *ConfigWatcher) UpdateLogger(logger *slog.Logger) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.logger = logger
}

// AddReloadCallback adds a callback function that will be called when config is reloaded
func (cw *ConfigWatcher) AddReloadCallback(callback func(*Config)) {
	cw.mutex.Lock()
	defer cw.mutex.Unlock()
	cw.callbacks = append(cw.callbacks, callback)
}

// watchLoop monitors the config file for changes
func (cw *ConfigWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Write) {
				fileInfo, err := os.Stat(cw.configPath)
				if err != nil {
					cw.logger.Warn(fmt.Sprintf("⚠️ 无法获取配置文件信息: %v", err))
					continue
				}

				// 修改时间没变就跳过（部分编辑器会触发多次 Write）
				if !fileInfo.ModTime().After(cw.lastModTime) {
					continue
				}

				cw.lastModTime = fileInfo.ModTime()

				if cw.debounceTimer != nil {
					cw.debounceTimer.Stop()
				}

				// 防抖：编辑器保存时可能连续写多次
				cw.debounceTimer = time.AfterFunc(500*time.Millisecond, func() {
					cw.logger.Info(fmt.Sprintf("🔄 检测到配置文件变更，正在重新加载... - 文件: %s", event.Name))
					if err := cw.reloadConfig(); err != nil {
						cw.logger.Error(fmt.Sprintf("❌ 配置文件重新加载失败: %v", err))
					} else {
						cw.logger.Info("✅ 配置文件重新加载成功")
					}
				})
			}

			// 部分编辑器保存时会先重命名旧文件，需要重新挂监听
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				time.Sleep(100 * time.Millisecond)
				if _, err := os.Stat(cw.configPath); err == nil {
					cw.watcher.Add(cw.configPath)
					cw.logger.Info(fmt.Sprintf("🔄 重新监听配置文件: %s", cw.configPath))
				}
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Error(fmt.Sprintf("⚠️ 配置文件监听错误: %v", err))
		}
	}
}

// reloadConfig reloads the configuration from file
func (cw *ConfigWatcher) reloadConfig() error {
	newConfig, err := LoadConfig(cw.configPath)
	if err != nil {
		return err
	}

	cw.mutex.Lock()
	oldConfig := cw.config
	cw.config = newConfig
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mutex.Unlock()

	cw.logConfigChanges(oldConfig, newConfig)

	// 回调在锁外执行，避免回调里再取配置时死锁
	for _, callback := range callbacks {
		callback(newConfig)
	}

	return nil
}

// logConfigChanges 记录热重载生效的配置差异
func (cw *ConfigWatcher) logConfigChanges(oldConfig, newConfig *Config) {
	if oldConfig.Logging.Level != newConfig.Logging.Level {
		cw.logger.Info(fmt.Sprintf("🔧 日志级别变更: %s → %s",
			oldConfig.Logging.Level, newConfig.Logging.Level))
	}
	if oldConfig.Tray.Tooltip != newConfig.Tray.Tooltip {
		cw.logger.Info(fmt.Sprintf("🔧 托盘提示变更: %s → %s",
			oldConfig.Tray.Tooltip, newConfig.Tray.Tooltip))
	}
	if oldConfig.App.BackendURL != newConfig.App.BackendURL {
		// 源站地址属于编译期常量语义，热重载不生效，提示需要重启
		cw.logger.Warn(fmt.Sprintf("⚠️ backend_url 变更需要重启应用才能生效: %s → %s",
			oldConfig.App.BackendURL, newConfig.App.BackendURL))
	}
}

// Close closes the configuration watcher
func (cw *ConfigWatcher) Close() error {
	if cw.debounceTimer != nil {
		cw.debounceTimer.Stop()
	}
	return cw.watcher.Close()
}
