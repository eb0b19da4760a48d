package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenBucketAllow(t *testing.T) {
	// 跨秒会重置令牌，重试一次保证整个循环落在同一秒内
	for attempt := 0; attempt < 3; attempt++ {
		start := time.Now().Unix()
		tb := &TokenBucket{capacity: 3, tokens: 3, lastSec: start}
		allowed := 0
		for i := 0; i < 10; i++ {
			if tb.allow() {
				allowed++
			}
		}
		if time.Now().Unix() != start {
			continue
		}
		if allowed != 3 {
			t.Errorf("allowed %d requests in one second, want 3", allowed)
		}
		return
	}
	t.Fatal("could not complete a run inside one second")
}

func TestWrapDisabledPassesThrough(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i, rec.Code)
		}
	}
}

func TestWrapEnabledLimits(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_QPS", "2")
	h := Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	codes := map[int]int{}
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		codes[rec.Code]++
	}
	if codes[http.StatusOK] == 0 || codes[http.StatusTooManyRequests] == 0 {
		t.Errorf("codes = %v, want a mix of 200 and 429", codes)
	}
}
