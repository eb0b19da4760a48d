// 包 store: 土壤站点归档库（PostgreSQL）的数据访问层，含站点读取与解析统计
package store

import (
	"context"
	"database/sql"

	"soil-api/internal/logger"
	"soil-api/internal/soildata"
	"soil-api/internal/utils"
)

// Store: 归档库访问入口，持有连接池并提供站点/统计接口
type Store struct {
	db *sql.DB
}

func AttachDB(db *sql.DB) *Store { return &Store{db: db} }

// Open: 使用 DSN 打开归档库连接池（池参数见 utils.OpenPostgres）
func Open(dsn string) (*Store, error) {
	db, err := utils.OpenPostgres(dsn)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close: 关闭数据库连接
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

// 文档注释：从归档库装载数据集
// 背景：一次性拉取全部站点进内存并建 KD 索引，服务查询路径不再访问数据库；
// 与文本装载收口到同一个构建入口，限制集过滤语义完全一致。
// 返回：不可变数据集；零站点（含过滤后为零）返回 soildata.ErrEmptyDataset。
func (s *Store) LoadDataset(ctx context.Context, schema soildata.Schema, filter soildata.RowFilter) (*soildata.Dataset, error) {
	logger.L().Debug("db_dataset_load_begin")
	rows, err := s.db.QueryContext(ctx, `SELECT lon, lat, sand, silt, clay, orgc, bulkdensity, ph, soilc, cn, code FROM _soil_sites`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	records := make(map[soildata.Coord]soildata.Record)
	for rows.Next() {
		var c soildata.Coord
		var r soildata.Record
		if err := rows.Scan(&c.Lon, &c.Lat, &r.Sand, &r.Silt, &r.Clay, &r.OrgCarbon, &r.BulkDensity, &r.PH, &r.SoilCarbon, &r.CN, &r.Code); err != nil {
			return nil, err
		}
		if filter != nil && !filter(c) {
			continue
		}
		records[c] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logger.L().Debug("db_dataset_load_done", "sites", len(records))
	return soildata.New(schema, "postgres:_soil_sites", records)
}

// SiteCount: 归档内站点数，用于启动期决定是否需要种子导入
func (s *Store) SiteCount(ctx context.Context) int64 {
	var c int64
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM _soil_sites")
	_ = row.Scan(&c)
	return c
}

// BumpResolveStats: 解析成功/未命中后累加当日计数
func (s *Store) BumpResolveStats(ctx context.Context, requests, misses int64) error {
	_, _ = s.db.ExecContext(ctx, `INSERT INTO _soil_resolve_daily(day, requests, misses)
        VALUES(current_date, $1, $2)
        ON CONFLICT (day) DO UPDATE SET requests=_soil_resolve_daily.requests+$1, misses=_soil_resolve_daily.misses+$2`,
		requests, misses)
	logger.L().Debug("stats_bump", "requests", requests, "misses", misses)
	return nil
}

// Totals: 当日解析统计，用于 /info 返回
type Totals struct {
	Requests int64
	Misses   int64
}

// GetTotals: 读取当日解析计数
func (s *Store) GetTotals(ctx context.Context) (*Totals, error) {
	var t Totals
	row := s.db.QueryRowContext(ctx, "SELECT requests, misses FROM _soil_resolve_daily WHERE day=current_date")
	_ = row.Scan(&t.Requests, &t.Misses)
	return &t, nil
}
