package middleware

import (
	"net/http"
	"sync"
	"time"

	"soil-api/internal/utils"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：批量消费方启动时可能瞬间打满解析接口，对入口限速保护索引与统计写入；
// 按环境变量开关与速率配置。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := time.Now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wrap 按 RATE_LIMIT_ENABLED / RATE_LIMIT_QPS 给处理链套上限流。
func Wrap(next http.Handler) http.Handler {
	if !utils.EnvBool("RATE_LIMIT_ENABLED") {
		return next
	}
	qps := utils.EnvInt("RATE_LIMIT_QPS", 200)
	if qps <= 0 {
		qps = 200
	}
	tb := &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix()}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
