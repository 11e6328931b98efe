// Package frontend 把远程 Studio 前端代理进本地 webview
// 作为 Wails AssetServer 的 Handler 挂载：webview 的每个资源请求
// 反向代理到远程源站，并把响应里的绝对源站地址改写为本地相对地址
package frontend

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"flowdesk/config"
)

// NewHandler 创建前端资源代理
// client 为共享的出站客户端（携带可选的出站代理配置）
func NewHandler(cfg *config.Config, client *http.Client, logger *slog.Logger) (http.Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	origin, err := url.Parse(cfg.App.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("解析源站地址失败: %w", err)
	}

	proxy := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = origin.Scheme
			req.URL.Host = origin.Host
			req.Host = origin.Host
			// 改写的是解码后的响应，避免上游返回本地无法处理的编码
			req.Header.Set("Accept-Encoding", "gzip, br")
		},
		ModifyResponse: func(resp *http.Response) error {
			return rewriteResponse(resp, origin)
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error("❌ [前端代理] 上游请求失败", "path", r.URL.Path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprintf(w, "upstream unavailable: %v", err)
		},
	}
	if client != nil && client.Transport != nil {
		proxy.Transport = client.Transport
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), accessLog(logger))
	router.NoRoute(gin.WrapH(proxy))

	return router, nil
}

// accessLog webview 资源请求访问日志（debug 级别，避免刷屏）
func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		// 跳过高频轮询噪音
		if strings.HasPrefix(path, "/health") {
			return
		}
		logger.Debug("📦 [前端代理] 资源请求",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
