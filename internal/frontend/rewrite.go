package frontend

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/andybalholm/brotli"
)

// 改写体积上限；正常的前端文档/脚本远小于此，超限直接透传
const maxRewriteBytes = 16 << 20

// rewriteResponse 把响应体里的源站绝对地址改写为相对地址
// 只处理文本类内容；压缩过的响应先解码，改写后以未压缩形式返回
func rewriteResponse(resp *http.Response, origin *url.URL) error {
	if !isRewritableContentType(resp.Header.Get("Content-Type")) {
		return nil
	}
	if resp.ContentLength > maxRewriteBytes {
		return nil
	}

	body, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		return fmt.Errorf("解码上游响应失败: %w", err)
	}

	rewritten := rewriteOrigin(body, origin)

	resp.Body = io.NopCloser(bytes.NewReader(rewritten))
	resp.ContentLength = int64(len(rewritten))
	resp.Header.Set("Content-Length", strconv.Itoa(len(rewritten)))
	resp.Header.Del("Content-Encoding")
	return nil
}

// isRewritableContentType 只有文本类内容才做地址改写
func isRewritableContentType(contentType string) bool {
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	mediaType = strings.TrimSpace(strings.ToLower(mediaType))

	switch mediaType {
	case "text/html", "text/css", "application/javascript", "text/javascript",
		"application/json", "application/manifest+json", "image/svg+xml":
		return true
	}
	return false
}

// decodeBody 按 Content-Encoding 解码响应体并读完关闭
func decodeBody(encoding string, body io.ReadCloser) ([]byte, error) {
	defer body.Close()

	var reader io.Reader = body
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	case "br":
		reader = brotli.NewReader(body)
	default:
		return nil, fmt.Errorf("不支持的内容编码: %s", encoding)
	}

	return io.ReadAll(io.LimitReader(reader, maxRewriteBytes))
}

// rewriteOrigin 把正文中指向源站的绝对地址替换为相对地址
// 同时处理协议相对写法 (//host) 与转义写法 (https:\/\/host)
func rewriteOrigin(body []byte, origin *url.URL) []byte {
	absolute := origin.Scheme + "://" + origin.Host
	escaped := strings.ReplaceAll(absolute, "/", `\/`)

	body = bytes.ReplaceAll(body, []byte(absolute), nil)
	body = bytes.ReplaceAll(body, []byte(escaped), nil)
	body = bytes.ReplaceAll(body, []byte("//"+origin.Host), nil)
	return body
}
