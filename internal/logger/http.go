// 包 logger：HTTP 访问日志中间件，记录方法、路径、状态、耗时与字节数。
package logger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// statusWriter 包装 ResponseWriter 捕获状态码与写出字节数，
// 标准库不暴露已写状态。
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// AccessMiddleware 生成访问日志中间件。
// 约束：不读取请求体；存活探测路径不记日志，避免探针刷屏；
// 远端地址取自 RemoteAddr，反向代理后的真实 IP 由上游头部处理。
func AccessMiddleware(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/healthz") {
				next.ServeHTTP(w, r)
				return
			}
			sw := &statusWriter{ResponseWriter: w, status: 200}
			start := time.Now()
			next.ServeHTTP(sw, r)
			l.Debug("http_access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"bytes", sw.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"ip", r.RemoteAddr,
			)
		})
	}
}
