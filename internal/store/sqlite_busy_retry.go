package store

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

func isSQLiteBusyError(err error) bool {
	if err == nil {
		return false
	}
	// 统一用字符串判断，避免耦合具体 driver 的错误类型
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "sqlite_busy") || strings.Contains(msg, "database is locked")
}

// queryRowsWithSQLiteBusyRetry 带指数退避的查询重试
// 仅重试 busy/locked；上层 ctx 取消或超时后直接返回最后一次的 busy 错误便于诊断
func queryRowsWithSQLiteBusyRetry(ctx context.Context, queryFn func() (*sql.Rows, error)) (*sql.Rows, error) {
	if ctx == nil {
		return queryFn()
	}

	backoff := 30 * time.Millisecond
	for {
		rows, err := queryFn()
		if err == nil || !isSQLiteBusyError(err) {
			return rows, err
		}

		if ctx.Err() != nil {
			return nil, err
		}

		wait := backoff
		if wait > 500*time.Millisecond {
			wait = 500 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, err
		case <-timer.C:
		}

		backoff *= 2
	}
}
