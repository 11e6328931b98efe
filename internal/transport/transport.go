// Package transport 构建出站 HTTP 客户端
// 健康检查与前端资源代理共用，支持可选的 http/https/socks5 出站代理
package transport

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"flowdesk/config"
)

// NewClient 根据配置创建 HTTP 客户端
// timeout 为整体请求超时上限；0 表示不在客户端层面设置超时（由调用方用 ctx 控制）
func NewClient(cfg *config.Config, timeout time.Duration) (*http.Client, error) {
	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if cfg != nil && cfg.Proxy.Enabled && cfg.Proxy.URL != "" {
		proxyURL, err := url.Parse(cfg.Proxy.URL)
		if err != nil {
			return nil, fmt.Errorf("代理地址无效: %w", err)
		}

		switch proxyURL.Scheme {
		case "http", "https":
			transport.Proxy = http.ProxyURL(proxyURL)
		case "socks5":
			var auth *proxy.Auth
			if proxyURL.User != nil {
				password, _ := proxyURL.User.Password()
				auth = &proxy.Auth{
					User:     proxyURL.User.Username(),
					Password: password,
				}
			}
			dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			})
			if err != nil {
				return nil, fmt.Errorf("创建 socks5 拨号器失败: %w", err)
			}
			transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
				if cd, ok := dialer.(proxy.ContextDialer); ok {
					return cd.DialContext(ctx, network, addr)
				}
				return dialer.Dial(network, addr)
			}
		default:
			return nil, fmt.Errorf("不支持的代理协议: %s", proxyURL.Scheme)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// GetProxyInfo 返回用于启动日志的代理描述
func GetProxyInfo(cfg *config.Config) string {
	if cfg == nil || !cfg.Proxy.Enabled || cfg.Proxy.URL == "" {
		return "出站代理: 未启用"
	}
	return fmt.Sprintf("出站代理已启用: %s", cfg.Proxy.URL)
}
