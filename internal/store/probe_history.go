// Package store 提供数据存储层实现
// 健康检查历史存储 (SQLite)
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ProbeRecord 表示数据库中的一条健康检查记录
type ProbeRecord struct {
	ID string `json:"id"` // uuid

	// 检查结果
	Healthy    bool   `json:"healthy"`
	Status     string `json:"status"`      // 响应体里的 status 字段
	HTTPStatus int    `json:"http_status"` // HTTP 状态码（未连上时为 0）
	LatencyMs  int64  `json:"latency_ms"`
	Error      string `json:"error"` // 失败原因（成功时为空）

	// 审计字段
	CheckedAt time.Time `json:"checked_at"`
}

// ProbeStore 定义健康检查历史存储接口
type ProbeStore interface {
	Insert(ctx context.Context, record *ProbeRecord) error
	Recent(ctx context.Context, limit int) ([]*ProbeRecord, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}

// OpenDatabase 打开（必要时创建）SQLite 数据库
func OpenDatabase(path string) (*sql.DB, error) {
	dsn := path + "?" + url.Values{
		"_journal_mode": {"WAL"},
		"_synchronous":  {"NORMAL"},
		"_busy_timeout": {"5000"},
	}.Encode()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	// 桌面应用单进程访问，限制连接数避免 WAL 写锁竞争
	db.SetMaxOpenConns(4)
	return db, nil
}

// SQLiteProbeStore 实现 ProbeStore 接口
type SQLiteProbeStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteProbeStore 创建新的 SQLite 健康检查历史存储
func NewSQLiteProbeStore(db *sql.DB) *SQLiteProbeStore {
	return &SQLiteProbeStore{db: db}
}

// InitSchema 初始化表结构（幂等）
func (s *SQLiteProbeStore) InitSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS probe_history (
	id TEXT PRIMARY KEY,
	healthy INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT '',
	http_status INTEGER NOT NULL DEFAULT 0,
	latency_ms INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	checked_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_probe_history_checked_at ON probe_history(checked_at);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("创建健康检查历史表失败: %w", err)
	}
	return nil
}

// Insert 写入一条检查记录（ID 为空时自动生成）
func (s *SQLiteProbeStore) Insert(ctx context.Context, record *ProbeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CheckedAt.IsZero() {
		record.CheckedAt = time.Now()
	}

	healthy := 0
	if record.Healthy {
		healthy = 1
	}

	query := `
		INSERT INTO probe_history (id, healthy, status, http_status, latency_ms, error, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID, healthy, record.Status, record.HTTPStatus,
		record.LatencyMs, record.Error,
		record.CheckedAt.Format("2006-01-02 15:04:05.000-07:00"),
	)
	if err != nil {
		return fmt.Errorf("写入健康检查记录失败: %w", err)
	}
	return nil
}

// Recent 返回最近的检查记录（按时间倒序）
func (s *SQLiteProbeStore) Recent(ctx context.Context, limit int) ([]*ProbeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, healthy, status, http_status, latency_ms, error, checked_at
		FROM probe_history
		ORDER BY checked_at DESC
		LIMIT ?
	`
	rows, err := queryRowsWithSQLiteBusyRetry(ctx, func() (*sql.Rows, error) {
		return s.db.QueryContext(ctx, query, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("查询健康检查历史失败: %w", err)
	}
	defer rows.Close()

	var records []*ProbeRecord
	for rows.Next() {
		var record ProbeRecord
		var healthy int
		var checkedAt string
		if err := rows.Scan(
			&record.ID, &healthy, &record.Status, &record.HTTPStatus,
			&record.LatencyMs, &record.Error, &checkedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描健康检查记录失败: %w", err)
		}
		record.Healthy = healthy == 1
		record.CheckedAt = parseSQLiteDateTime(checkedAt)
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历健康检查记录失败: %w", err)
	}
	return records, nil
}

// Prune 删除早于指定时间的记录，返回删除条数
func (s *SQLiteProbeStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM probe_history WHERE checked_at < ?`,
		olderThan.Format("2006-01-02 15:04:05.000-07:00"),
	)
	if err != nil {
		return 0, fmt.Errorf("清理健康检查历史失败: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// Count 返回记录总数
func (s *SQLiteProbeStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM probe_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("统计健康检查历史失败: %w", err)
	}
	return count, nil
}
