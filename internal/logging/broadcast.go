package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// BroadcastHandler 包装任意 slog.Handler
// 除了透传给内层处理器，还把日志送进近期环形缓冲并喂给 EventEmitter
// （前端日志面板：订阅 log:batch 事件 + 打开时先拉一次 GetRecent）
type BroadcastHandler struct {
	inner   slog.Handler
	Emitter *EventEmitter
	ring    *entryRing // WithAttrs/WithGroup 派生的处理器共享同一个缓冲
}

// entryRing 近期日志环形缓冲
type entryRing struct {
	mu      sync.Mutex
	entries []LogEntry
	max     int
	start   int
	count   int
}

// NewBroadcastHandler 创建广播处理器，maxRecent 为环形缓冲容量
func NewBroadcastHandler(inner slog.Handler, maxRecent int) *BroadcastHandler {
	if maxRecent <= 0 {
		maxRecent = 1000
	}
	return &BroadcastHandler{
		inner:   inner,
		Emitter: NewEventEmitter(),
		ring: &entryRing{
			entries: make([]LogEntry, maxRecent),
			max:     maxRecent,
		},
	}
}

func (h *BroadcastHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *BroadcastHandler) Handle(ctx context.Context, r slog.Record) error {
	entry := LogEntry{
		Time:    r.Time.Format("2006-01-02 15:04:05.000"),
		Level:   levelLabel(r.Level),
		Message: formatMessage(r),
	}

	h.ring.add(entry)
	h.Emitter.Emit(entry)

	return h.inner.Handle(ctx, r)
}

func (h *BroadcastHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &BroadcastHandler{inner: h.inner.WithAttrs(attrs), Emitter: h.Emitter, ring: h.ring}
}

func (h *BroadcastHandler) WithGroup(name string) slog.Handler {
	return &BroadcastHandler{inner: h.inner.WithGroup(name), Emitter: h.Emitter, ring: h.ring}
}

// GetRecent 返回环形缓冲里的近期日志（时间正序）
func (h *BroadcastHandler) GetRecent() []LogEntry {
	return h.ring.snapshot()
}

func (r *entryRing) add(entry LogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[(r.start+r.count)%r.max] = entry
	if r.count < r.max {
		r.count++
	} else {
		r.start = (r.start + 1) % r.max
	}
}

func (r *entryRing) snapshot() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]LogEntry, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.entries[(r.start+i)%r.max])
	}
	return out
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// formatMessage 把消息与属性拼成单行文本
func formatMessage(r slog.Record) string {
	if r.NumAttrs() == 0 {
		return r.Message
	}

	var attrs []string
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, fmt.Sprintf("%s=%v", a.Key, a.Value))
		return true
	})
	return r.Message + " " + strings.Join(attrs, " ")
}
