package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseSize(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"100MB", 100 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
		{"512KB", 512 * 1024},
		{"2048B", 2048},
		{"1024", 1024},
		{" 10 MB ", 10 * 1024 * 1024},
	}
	for _, tc := range cases {
		got, err := ParseSize(tc.in)
		if err != nil {
			t.Fatalf("ParseSize(%q) 失败: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseSize(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "abc", "-5MB", "0"} {
		if _, err := ParseSize(bad); err == nil {
			t.Fatalf("ParseSize(%q) 应报错", bad)
		}
	}
}

func TestFileRotator_RotatesAtSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	r, err := NewFileRotator(path, 64, 3, false)
	if err != nil {
		t.Fatalf("创建轮转器失败: %v", err)
	}
	defer r.Close()

	line := strings.Repeat("x", 30) + "\n"
	for i := 0; i < 6; i++ {
		if _, err := r.Write([]byte(line)); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	rotated := r.sortedRotatedFiles()
	if len(rotated) == 0 {
		t.Fatalf("超过大小上限后应产生轮转文件")
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("应存在 %s.1: %v", path, err)
	}

	// 当前文件的大小应在上限之内
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("读取当前文件失败: %v", err)
	}
	if info.Size() > 64 {
		t.Fatalf("当前文件超过上限: %d", info.Size())
	}
}

func TestFileRotator_KeepsAtMostMaxFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	r, err := NewFileRotator(path, 16, 2, false)
	if err != nil {
		t.Fatalf("创建轮转器失败: %v", err)
	}
	defer r.Close()

	for i := 0; i < 20; i++ {
		if _, err := r.Write([]byte(fmt.Sprintf("line-%02d........\n", i))); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	rotated := r.sortedRotatedFiles()
	if len(rotated) > 2 {
		t.Fatalf("历史文件数应不超过 2, got %d: %v", len(rotated), rotated)
	}
}

func TestFileRotator_CompressesRotated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	r, err := NewFileRotator(path, 32, 3, true)
	if err != nil {
		t.Fatalf("创建轮转器失败: %v", err)
	}
	defer r.Close()

	for i := 0; i < 4; i++ {
		if _, err := r.Write([]byte(strings.Repeat("y", 20) + "\n")); err != nil {
			t.Fatalf("写入失败: %v", err)
		}
	}

	if _, err := os.Stat(path + ".1.gz"); err != nil {
		t.Fatalf("轮转文件应被压缩为 .gz: %v", err)
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Fatalf("压缩后原始轮转文件应被删除")
	}
}

func TestFileRotator_WriteAfterClose(t *testing.T) {
	r, err := NewFileRotator(filepath.Join(t.TempDir(), "app.log"), 0, 0, false)
	if err != nil {
		t.Fatalf("创建轮转器失败: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("关闭失败: %v", err)
	}
	if _, err := r.Write([]byte("x")); err == nil {
		t.Fatalf("关闭后写入应报错")
	}
}

func TestBroadcastHandler_RecentRing(t *testing.T) {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := NewBroadcastHandler(inner, 3)
	logger := slog.New(h)

	for i := 0; i < 5; i++ {
		logger.Info(fmt.Sprintf("msg-%d", i))
	}

	recent := h.GetRecent()
	if len(recent) != 3 {
		t.Fatalf("环形缓冲应只保留 3 条, got %d", len(recent))
	}
	// 时间正序：最旧的在前，最旧两条已被挤掉
	want := []string{"msg-2", "msg-3", "msg-4"}
	for i, entry := range recent {
		if entry.Message != want[i] {
			t.Fatalf("第 %d 条 = %q, want %q", i, entry.Message, want[i])
		}
		if entry.Level != "INFO" {
			t.Fatalf("级别 = %q, want INFO", entry.Level)
		}
	}
}

func TestBroadcastHandler_DerivedHandlersShareRing(t *testing.T) {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := NewBroadcastHandler(inner, 10)

	base := slog.New(h)
	derived := base.With("component", "tray")

	base.Info("from base")
	derived.Warn("from derived")

	recent := h.GetRecent()
	if len(recent) != 2 {
		t.Fatalf("派生 logger 的日志应进入同一个缓冲, got %d 条", len(recent))
	}
	if recent[1].Message != "from derived" {
		t.Fatalf("消息不符: %q", recent[1].Message)
	}
	if recent[1].Level != "WARN" {
		t.Fatalf("级别 = %q, want WARN", recent[1].Level)
	}
}

func TestBroadcastHandler_CallSiteAttrsInMessage(t *testing.T) {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	h := NewBroadcastHandler(inner, 10)

	slog.New(h).Info("窗口已注册", "name", "main")

	recent := h.GetRecent()
	if len(recent) != 1 {
		t.Fatalf("应有 1 条日志, got %d", len(recent))
	}
	if !strings.Contains(recent[0].Message, "name=main") {
		t.Fatalf("调用点属性应拼入消息: %q", recent[0].Message)
	}
}

func TestFormatMessage(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelInfo, "启动完成", 0)
	r.AddAttrs(slog.String("mode", "tray"), slog.Int("windows", 2))

	got := formatMessage(r)
	if got != "启动完成 mode=tray windows=2" {
		t.Fatalf("格式化结果不符: %q", got)
	}
}

func TestLevelLabel(t *testing.T) {
	cases := map[slog.Level]string{
		slog.LevelDebug: "DEBUG",
		slog.LevelInfo:  "INFO",
		slog.LevelWarn:  "WARN",
		slog.LevelError: "ERROR",
	}
	for level, want := range cases {
		if got := levelLabel(level); got != want {
			t.Fatalf("levelLabel(%v) = %q, want %q", level, got, want)
		}
	}
}

func TestEventEmitter_EmitBeforeStartIsNoop(t *testing.T) {
	e := NewEventEmitter()
	if e.IsEnabled() {
		t.Fatalf("未启动时应为禁用状态")
	}
	// 未启动时投递不应阻塞或崩溃
	done := make(chan struct{})
	go func() {
		e.Emit(LogEntry{Level: "INFO", Message: "dropped"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("未启动时 Emit 不应阻塞")
	}
	e.Stop()
}
