package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseConfig_EmptyUsesDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(""))
	if err != nil {
		t.Fatalf("解析空配置失败: %v", err)
	}

	if cfg.App.Title != "FlowDesk" {
		t.Fatalf("默认标题 = %q", cfg.App.Title)
	}
	if cfg.App.BackendURL != "https://app.flowdesk.io" {
		t.Fatalf("默认源站 = %q", cfg.App.BackendURL)
	}
	if cfg.App.HealthPath != "/health" {
		t.Fatalf("默认健康检查路径 = %q", cfg.App.HealthPath)
	}
	if cfg.App.HealthTimeout != 10*time.Second {
		t.Fatalf("默认健康检查超时 = %v", cfg.App.HealthTimeout)
	}
	if cfg.App.RequestTimeout != 30*time.Second {
		t.Fatalf("默认请求超时 = %v", cfg.App.RequestTimeout)
	}
	if cfg.Window.Width != 1280 || cfg.Window.Height != 800 {
		t.Fatalf("默认窗口尺寸 = %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Window.MinWidth != 1024 || cfg.Window.MinHeight != 600 {
		t.Fatalf("默认最小尺寸 = %dx%d", cfg.Window.MinWidth, cfg.Window.MinHeight)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("默认日志级别 = %q", cfg.Logging.Level)
	}
	if cfg.Tray.Tooltip != "FlowDesk" {
		t.Fatalf("托盘提示应默认取应用标题, got %q", cfg.Tray.Tooltip)
	}
}

func TestParseConfig_Overrides(t *testing.T) {
	yaml := `
app:
  title: "MyDesk"
  backend_url: "http://localhost:3000"
  health_timeout: 5s
tray:
  enabled: true
logging:
  level: debug
  file_enabled: true
`
	cfg, err := ParseConfig([]byte(yaml))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if cfg.App.Title != "MyDesk" {
		t.Fatalf("标题 = %q", cfg.App.Title)
	}
	if cfg.App.HealthTimeout != 5*time.Second {
		t.Fatalf("健康检查超时 = %v", cfg.App.HealthTimeout)
	}
	if !cfg.Tray.Enabled {
		t.Fatalf("托盘应启用")
	}
	if cfg.Tray.Tooltip != "MyDesk" {
		t.Fatalf("托盘提示应取覆盖后的标题, got %q", cfg.Tray.Tooltip)
	}
	// 开启文件日志后相关默认值应补齐
	if cfg.Logging.FilePath == "" || cfg.Logging.MaxFileSize == "" || cfg.Logging.MaxFiles == 0 {
		t.Fatalf("文件日志默认值未补齐: %+v", cfg.Logging)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"非法源站协议", "app:\n  backend_url: \"ftp://example.com\"\n"},
		{"健康路径缺少斜杠", "app:\n  health_path: \"health\"\n"},
		{"非法日志级别", "logging:\n  level: verbose\n"},
		{"非法代理协议", "proxy:\n  enabled: true\n  url: \"quic://1.2.3.4:1080\"\n"},
		{"最小尺寸超过初始尺寸", "window:\n  width: 800\n  height: 600\n  min_width: 1000\n"},
		{"坏 YAML", "app: [\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseConfig([]byte(tc.yaml)); err == nil {
				t.Fatalf("应报错")
			}
		})
	}
}

func TestHealthURL(t *testing.T) {
	cfg := &Config{}
	cfg.App.BackendURL = "https://app.flowdesk.io/"
	cfg.App.HealthPath = "/health"
	if got := cfg.HealthURL(); got != "https://app.flowdesk.io/health" {
		t.Fatalf("HealthURL = %q", got)
	}

	cfg.App.BackendURL = "http://localhost:3000"
	if got := cfg.HealthURL(); got != "http://localhost:3000/health" {
		t.Fatalf("HealthURL = %q", got)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("缺失文件应报错")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("错误信息不符: %v", err)
	}
}

func TestConfigWatcher_ReloadOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}

	cw, err := NewConfigWatcher(path, discardLogger())
	if err != nil {
		t.Fatalf("创建监听器失败: %v", err)
	}
	defer cw.Close()

	if cw.GetConfig().Logging.Level != "info" {
		t.Fatalf("初始级别 = %q", cw.GetConfig().Logging.Level)
	}

	reloaded := make(chan *Config, 1)
	cw.AddReloadCallback(func(c *Config) {
		select {
		case reloaded <- c:
		default:
		}
	})

	// fsnotify 修改时间精度有限，确保 ModTime 前进
	time.Sleep(1100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("logging:\n  level: debug\n"), 0o644); err != nil {
		t.Fatalf("改写配置失败: %v", err)
	}

	select {
	case c := <-reloaded:
		if c.Logging.Level != "debug" {
			t.Fatalf("重载后级别 = %q", c.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("等待配置重载超时")
	}

	if cw.GetConfig().Logging.Level != "debug" {
		t.Fatalf("GetConfig 应返回重载后的配置")
	}
}

func TestConfigWatcher_InvalidInitialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("logging:\n  level: bogus\n"), 0o644); err != nil {
		t.Fatalf("写配置失败: %v", err)
	}

	if _, err := NewConfigWatcher(path, discardLogger()); err == nil {
		t.Fatalf("非法初始配置应报错")
	}
}
