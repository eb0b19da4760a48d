// 包 utils：环境变量、Postgres 连接与自签证书的小工具集合。
package utils

import (
	"os"
	"strconv"
)

// Env 读取环境变量，空值回退 def。
func Env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvInt 读取整数环境变量，缺失或解析失败回退 def。
func EnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// EnvFloat 读取浮点环境变量，缺失或解析失败回退 def。
func EnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// EnvBool 读取开关环境变量：1/true/yes 视为开。
func EnvBool(key string) bool {
	switch os.Getenv(key) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	}
	return false
}
