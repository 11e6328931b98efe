package frontend

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"

	"flowdesk/config"
)

func TestRewriteOrigin(t *testing.T) {
	origin, _ := url.Parse("https://app.flowdesk.io")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "绝对地址",
			in:   `<script src="https://app.flowdesk.io/assets/main.js"></script>`,
			want: `<script src="/assets/main.js"></script>`,
		},
		{
			name: "JSON 转义地址",
			in:   `{"url":"https:\/\/app.flowdesk.io\/api"}`,
			want: `{"url":"\/api"}`,
		},
		{
			name: "协议相对地址",
			in:   `<img src="//app.flowdesk.io/logo.png">`,
			want: `<img src="/logo.png">`,
		},
		{
			name: "其他域名不动",
			in:   `<a href="https://example.com/page">x</a>`,
			want: `<a href="https://example.com/page">x</a>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(rewriteOrigin([]byte(tc.in), origin))
			if got != tc.want {
				t.Fatalf("改写结果不符:\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestIsRewritableContentType(t *testing.T) {
	rewritable := []string{
		"text/html",
		"text/html; charset=utf-8",
		"application/javascript",
		"application/json",
		"image/svg+xml",
	}
	for _, ct := range rewritable {
		if !isRewritableContentType(ct) {
			t.Fatalf("%q 应被改写", ct)
		}
	}

	passthrough := []string{"image/png", "application/octet-stream", "font/woff2", ""}
	for _, ct := range passthrough {
		if isRewritableContentType(ct) {
			t.Fatalf("%q 应透传", ct)
		}
	}
}

func TestDecodeBody_Gzip(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("hello gzip"))
	gz.Close()

	body, err := decodeBody("gzip", io.NopCloser(&buf))
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if string(body) != "hello gzip" {
		t.Fatalf("解码结果不符: %q", body)
	}
}

func TestDecodeBody_Brotli(t *testing.T) {
	var buf bytes.Buffer
	bw := brotli.NewWriter(&buf)
	bw.Write([]byte("hello brotli"))
	bw.Close()

	body, err := decodeBody("br", io.NopCloser(&buf))
	if err != nil {
		t.Fatalf("解码失败: %v", err)
	}
	if string(body) != "hello brotli" {
		t.Fatalf("解码结果不符: %q", body)
	}
}

func TestDecodeBody_UnknownEncoding(t *testing.T) {
	_, err := decodeBody("deflate", io.NopCloser(strings.NewReader("x")))
	if err == nil {
		t.Fatalf("未知编码应报错")
	}
}

func TestNewHandler_ProxiesAndRewrites(t *testing.T) {
	var upstream *httptest.Server
	upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			io.WriteString(w, `<script src="`+upstream.URL+`/assets/app.js"></script>`)
		case "/assets/app.js":
			w.Header().Set("Content-Type", "application/javascript")
			io.WriteString(w, `console.log("ok")`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer upstream.Close()

	cfg := &config.Config{}
	cfg.App.BackendURL = upstream.URL

	handler, err := NewHandler(cfg, nil, nil)
	if err != nil {
		t.Fatalf("创建前端代理失败: %v", err)
	}

	// 首页：源站绝对地址应被改写为相对地址
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, upstream.URL) {
		t.Fatalf("源站地址未被改写: %s", body)
	}
	if !strings.Contains(body, `src="/assets/app.js"`) {
		t.Fatalf("改写后缺少相对地址: %s", body)
	}

	// 子资源透传
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/app.js", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("状态码 = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "console.log") {
		t.Fatalf("子资源内容不符: %s", rec.Body.String())
	}
}

func TestNewHandler_UpstreamDown_Returns502(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	cfg := &config.Config{}
	cfg.App.BackendURL = upstream.URL
	upstream.Close()

	handler, err := NewHandler(cfg, nil, nil)
	if err != nil {
		t.Fatalf("创建前端代理失败: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("上游不可用应返回 502, got %d", rec.Code)
	}
}

func TestNewHandler_BadOrigin(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.BackendURL = "://bad"

	if _, err := NewHandler(cfg, nil, nil); err == nil {
		t.Fatalf("非法源站地址应报错")
	}
}
