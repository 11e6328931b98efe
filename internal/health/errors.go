package health

import "fmt"

// 健康检查错误分类：连接失败 / 非成功状态码 / 响应体不可解析。
// Error() 文本就是桥接层面向前端的三种可读错误串，这里不再二次包装。

// ConnectError 连接失败（含超时、拒绝连接、DNS 失败）
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("Failed to connect to backend: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// StatusError 非成功状态码
type StatusError struct {
	StatusCode int
	Status     string // 如 "500 Internal Server Error"
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Backend health check failed with status: %s", e.Status)
}

// ParseError 响应体不是合法的健康响应 JSON
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse health response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
