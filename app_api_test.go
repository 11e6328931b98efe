package main

import (
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"flowdesk/config"
	"flowdesk/internal/lifecycle"
	"flowdesk/internal/window"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.ParseConfig(nil)
	if err != nil {
		t.Fatalf("构建测试配置失败: %v", err)
	}
	return cfg
}

func TestGreet(t *testing.T) {
	a := NewApp()
	got := a.Greet("Alice")
	want := "Hello, Alice! You've been greeted from Go!"
	if got != want {
		t.Fatalf("Greet = %q, want %q", got, want)
	}
}

func TestGetAppVersion_Stable(t *testing.T) {
	a := NewApp()
	v1 := a.GetAppVersion()
	v2 := a.GetAppVersion()
	if v1 == "" {
		t.Fatalf("版本号不应为空")
	}
	if v1 != v2 {
		t.Fatalf("版本号应在进程生命周期内不变: %q vs %q", v1, v2)
	}
}

func TestGetBackendURL(t *testing.T) {
	a := NewApp()
	a.config = testConfig(t)

	if got := a.GetBackendURL(); got != "https://app.flowdesk.io" {
		t.Fatalf("GetBackendURL = %q", got)
	}
}

func TestGetAPIConfig(t *testing.T) {
	a := NewApp()
	a.config = testConfig(t)

	apiCfg := a.GetAPIConfig()
	if apiCfg.BackendURL != "https://app.flowdesk.io" {
		t.Fatalf("BackendURL = %q", apiCfg.BackendURL)
	}
	if apiCfg.Timeout != 30000 {
		t.Fatalf("Timeout = %d, want 30000 (毫秒)", apiCfg.Timeout)
	}
}

func TestShowMainWindow_BeforeStartup(t *testing.T) {
	a := NewApp()

	err := a.ShowMainWindow()
	if err == nil {
		t.Fatalf("启动前调用应返回错误")
	}
	if err.Error() != "Main window not found" {
		t.Fatalf("错误文本 = %q, want %q", err.Error(), "Main window not found")
	}
}

func TestShowMainWindow_EmptyRegistry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewApp()
	a.windows = window.NewRegistry(logger)
	a.lifecycle = lifecycle.NewController(lifecycle.Options{
		Windows: a.windows,
		Logger:  logger,
	})

	err := a.ShowMainWindow()
	if err == nil || err.Error() != "Main window not found" {
		t.Fatalf("主窗口缺失时错误文本 = %v", err)
	}
}

func TestOpenExternalURL_RejectsNonHTTP(t *testing.T) {
	a := NewApp()

	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "ftp://example.com"} {
		err := a.OpenExternalURL(raw)
		if err == nil {
			t.Fatalf("%q 应被拒绝", raw)
		}
		if !strings.HasPrefix(err.Error(), "Failed to open URL:") {
			t.Fatalf("错误前缀不符: %q", err.Error())
		}
	}
}

func TestGetSystemStatus(t *testing.T) {
	a := NewApp()
	a.config = testConfig(t)
	a.startTime = time.Now().Add(-90 * time.Second)

	status := a.GetSystemStatus()
	if status.Version != Version {
		t.Fatalf("Version = %q", status.Version)
	}
	if status.BackendURL != "https://app.flowdesk.io" {
		t.Fatalf("BackendURL = %q", status.BackendURL)
	}
	if status.TrayActive {
		t.Fatalf("未启动托盘时 TrayActive 应为 false")
	}
	if status.UptimeSeconds < 90 {
		t.Fatalf("UptimeSeconds = %d", status.UptimeSeconds)
	}
	if status.Uptime == "" || status.StartTime == "" {
		t.Fatalf("运行时长字段不应为空: %+v", status)
	}
}

func TestGetRecentLogs_BeforeSetup(t *testing.T) {
	a := NewApp()
	if logs := a.GetRecentLogs(); logs != nil {
		t.Fatalf("日志处理器未就绪时应返回 nil, got %v", logs)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{30 * time.Second, "30秒"},
		{90 * time.Second, "1分30秒"},
		{2*time.Hour + 15*time.Minute, "2小时15分"},
		{50 * time.Hour, "2天2小时"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
