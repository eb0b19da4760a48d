package utils

import (
	"database/sql"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv 由 PG_* 环境变量拼出归档库 DSN，均有本地默认值。
func BuildPostgresDSNFromEnv() string {
	user := Env("PG_USER", "postgres")
	pass := Env("PG_PASSWORD", "")
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + Env("PG_HOST", "localhost") + ":" + Env("PG_PORT", "5432")
	dsn += "/" + Env("PG_DB", "soilapi") + "?sslmode=" + Env("PG_SSLMODE", "disable")
	return dsn
}

// OpenPostgres 打开站点归档库连接池。
// 约束：连接池上限可通过 PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS 调整；
// sql.Open 不触网，连通性由调用方 Ping 验证。
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(EnvInt("PG_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(EnvInt("PG_MAX_IDLE_CONNS", 25))
	return db, nil
}

// OpenPostgresFromEnv 组合 DSN 拼装与连接池打开。
func OpenPostgresFromEnv() (*sql.DB, error) {
	return OpenPostgres(BuildPostgresDSNFromEnv())
}
