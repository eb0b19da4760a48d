package migrate

import (
	"database/sql"

	"soil-api/internal/logger"
)

// 背景：首次运行自动创建站点归档与解析统计所需的表，保障导入与服务启动
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；仅创建最小必需结构
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS _soil_sites (
            lon DOUBLE PRECISION NOT NULL,
            lat DOUBLE PRECISION NOT NULL,
            sand DOUBLE PRECISION NOT NULL DEFAULT 0,
            silt DOUBLE PRECISION NOT NULL DEFAULT 0,
            clay DOUBLE PRECISION NOT NULL DEFAULT 0,
            orgc DOUBLE PRECISION NOT NULL DEFAULT 0,
            bulkdensity DOUBLE PRECISION NOT NULL DEFAULT 0,
            ph DOUBLE PRECISION NOT NULL DEFAULT 0,
            soilc DOUBLE PRECISION NOT NULL DEFAULT 0,
            cn DOUBLE PRECISION NOT NULL DEFAULT -1,
            code INT NOT NULL DEFAULT 0,
            PRIMARY KEY (lon, lat)
        )`,
		`CREATE TABLE IF NOT EXISTS _soil_resolve_daily (
            day DATE PRIMARY KEY,
            requests BIGINT NOT NULL DEFAULT 0,
            misses BIGINT NOT NULL DEFAULT 0
        )`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
