package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// FileRotator 按大小轮转的日志文件写入器
// 写满 maxSize 后把当前文件改名为 app.log.1（旧文件依次后移），
// 超出 maxFiles 的最旧文件删除；可选在轮转时 gzip 压缩旧文件
type FileRotator struct {
	mu       sync.Mutex
	path     string
	maxSize  int64
	maxFiles int
	compress bool
	file     *os.File
	size     int64
}

// NewFileRotator 创建日志轮转器（必要时创建目录）
func NewFileRotator(path string, maxSize int64, maxFiles int, compress bool) (*FileRotator, error) {
	if maxSize <= 0 {
		maxSize = 100 * 1024 * 1024
	}
	if maxFiles <= 0 {
		maxFiles = 10
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("创建日志目录失败: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("打开日志文件失败: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("读取日志文件信息失败: %w", err)
	}

	return &FileRotator{
		path:     path,
		maxSize:  maxSize,
		maxFiles: maxFiles,
		compress: compress,
		file:     file,
		size:     info.Size(),
	}, nil
}

// Write 写入日志；超过大小上限时先轮转
func (r *FileRotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, fmt.Errorf("日志轮转器已关闭")
	}

	if r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			// 轮转失败不中断写入，继续写当前文件
			fmt.Fprintf(os.Stderr, "日志轮转失败: %v\n", err)
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// rotate 执行一次轮转（调用方持锁）
func (r *FileRotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	r.file = nil

	suffix := ""
	if r.compress {
		suffix = ".gz"
	}

	// 旧文件依次后移：app.log.2 → app.log.3 ...
	for i := r.maxFiles - 1; i >= 1; i-- {
		from := fmt.Sprintf("%s.%d%s", r.path, i, suffix)
		to := fmt.Sprintf("%s.%d%s", r.path, i+1, suffix)
		if i == r.maxFiles-1 {
			os.Remove(to)
		}
		if _, err := os.Stat(from); err == nil {
			os.Rename(from, to)
		}
	}

	rotated := r.path + ".1"
	if err := os.Rename(r.path, rotated); err != nil {
		return err
	}
	if r.compress {
		if err := compressFile(rotated, rotated+".gz"); err == nil {
			os.Remove(rotated)
		}
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	r.file = file
	r.size = 0
	return nil
}

// Sync 刷新文件缓冲
func (r *FileRotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close 关闭日志文件
func (r *FileRotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func compressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// ParseSize 解析 "100MB" 这类大小写法，返回字节数
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" {
		return 0, fmt.Errorf("大小不能为空")
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		s = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		s = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		s = strings.TrimSuffix(s, "B")
	}

	value, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析大小 '%s': %w", s, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("大小必须为正数: %d", value)
	}
	return value * multiplier, nil
}

// sortedRotatedFiles 返回当前轮转出的历史文件（测试用）
func (r *FileRotator) sortedRotatedFiles() []string {
	pattern := r.path + ".*"
	matches, _ := filepath.Glob(pattern)
	sort.Strings(matches)
	return matches
}
