package logging

import (
	"context"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// 前端日志面板订阅的批量事件名
const EventLogBatch = "log:batch"

// EventEmitter Wails 事件发射器
// 把日志按批推送到前端，批量 + 有界队列避免日志风暴拖慢 UI
type EventEmitter struct {
	mu sync.Mutex

	ctx     context.Context
	enabled bool

	batchSize     int
	flushInterval time.Duration

	queue    chan LogEntry
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewEventEmitter 创建事件发射器
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{
		batchSize:     10,
		flushInterval: 100 * time.Millisecond,
	}
}

// Start 启动事件发射器（前端就绪后调用）
func (e *EventEmitter) Start(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.enabled {
		return
	}

	e.ctx = ctx
	e.enabled = true
	e.stopChan = make(chan struct{})
	e.doneChan = make(chan struct{})

	// 有界队列：前端消费慢时丢弃，不拖住日志主路径
	e.queue = make(chan LogEntry, e.batchSize*200)

	go e.batchSendLoop(e.ctx, e.queue, e.stopChan, e.doneChan)
}

// Stop 停止事件发射器并等待发送协程退出
func (e *EventEmitter) Stop() {
	e.mu.Lock()
	if !e.enabled {
		e.mu.Unlock()
		return
	}
	e.enabled = false
	stopChan := e.stopChan
	doneChan := e.doneChan
	e.stopChan = nil
	e.doneChan = nil
	e.queue = nil
	e.mu.Unlock()

	if stopChan != nil {
		close(stopChan)
	}
	if doneChan != nil {
		<-doneChan
	}
}

// Emit 投递一条日志；队列满时丢弃（WARN/ERROR 优先挤掉一条旧的）
func (e *EventEmitter) Emit(entry LogEntry) {
	e.mu.Lock()
	if !e.enabled || e.queue == nil {
		e.mu.Unlock()
		return
	}
	queue := e.queue
	e.mu.Unlock()

	select {
	case queue <- entry:
	default:
		if entry.Level == "ERROR" || entry.Level == "WARN" {
			select {
			case <-queue:
			default:
			}
			select {
			case queue <- entry:
			default:
			}
		}
	}
}

func (e *EventEmitter) batchSendLoop(
	ctx context.Context,
	queue <-chan LogEntry,
	stop <-chan struct{},
	done chan<- struct{},
) {
	defer close(done)

	ticker := time.NewTicker(e.flushInterval)
	defer ticker.Stop()

	buffer := make([]LogEntry, 0, e.batchSize)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if ctx != nil {
			runtime.EventsEmit(ctx, EventLogBatch, buffer)
		}
		buffer = buffer[:0]
	}

	for {
		select {
		case <-stop:
			// 退出前尽量把剩余消息刷掉（不阻塞）
			for {
				select {
				case entry := <-queue:
					buffer = append(buffer, entry)
					if len(buffer) >= e.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		case entry := <-queue:
			buffer = append(buffer, entry)
			if len(buffer) >= e.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// IsEnabled 返回是否已启动
func (e *EventEmitter) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}
