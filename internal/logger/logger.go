// 包 logger：进程级日志器的统一初始化，各模块通过 L() 取用，
// 级别与格式由环境变量控制，避免散落配置。
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// 进程级复用，多处初始化会导致输出格式不一致
var defaultLogger *slog.Logger

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup 初始化默认日志器。
// 约束：LOG_LEVEL 取 debug/info/warn/error；LOG_FORMAT=json 输出结构化日志，
// 其余为文本；输出固定到标准错误，文件与聚合通道不在此层处理。
func Setup() *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(os.Getenv("LOG_LEVEL"))}
	var h slog.Handler
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L 获取默认日志器，未初始化时回退到 Setup。
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup()
	}
	return defaultLogger
}
