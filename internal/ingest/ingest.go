// 包 ingest：土壤数据集的离线导入通道（文本 → 归档库）与周期刷新调度
package ingest

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"soil-api/internal/logger"
	"soil-api/internal/metrics"
	"soil-api/internal/soildata"
)

const upsertSiteSQL = `INSERT INTO _soil_sites(lon,lat,sand,silt,clay,orgc,bulkdensity,ph,soilc,cn,code)
    VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
    ON CONFLICT (lon,lat) DO UPDATE SET sand=EXCLUDED.sand, silt=EXCLUDED.silt,
    clay=EXCLUDED.clay, orgc=EXCLUDED.orgc, bulkdensity=EXCLUDED.bulkdensity,
    ph=EXCLUDED.ph, soilc=EXCLUDED.soilc, cn=EXCLUDED.cn, code=EXCLUDED.code`

// ImportDataset：流式解析数据行并批量写入归档库
// 背景：batch 行为一批提交，降低锁持有与 WAL 压力；同坐标 upsert 覆盖，
// 与内存装载的“后行覆盖前行”语义一致。
// 异常：坏行/数据库错误直接返回，不做重试（交由调用方处理）
func ImportDataset(db *sql.DB, r io.Reader, name string, schema soildata.Schema, batch int) (int, error) {
	if batch <= 0 {
		batch = 5000
	}
	logger.L().Info("ingest_start", "src", name, "schema", schema.String())
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.Prepare(upsertSiteSQL)
	if err != nil {
		return 0, err
	}

	count := 0
	loader := soildata.Loader{Schema: schema}
	if _, err := loader.Each(r, name, func(c soildata.Coord, rec soildata.Record) error {
		if _, err := stmt.Exec(c.Lon, c.Lat, rec.Sand, rec.Silt, rec.Clay, rec.OrgCarbon,
			rec.BulkDensity, rec.PH, rec.SoilCarbon, rec.CN, rec.Code); err != nil {
			return err
		}
		count++
		metrics.IngestRowsTotal.Inc()
		if count%batch == 0 {
			logger.L().Info("ingest_progress", "count", count)
			if err := tx.Commit(); err != nil {
				return err
			}
			if tx, err = db.Begin(); err != nil {
				return err
			}
			if stmt, err = tx.Prepare(upsertSiteSQL); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return count, err
	}
	if err := tx.Commit(); err != nil {
		return count, err
	}
	logger.L().Info("ingest_done", "count", count)
	return count, nil
}

// ImportFile：按路径导入；打开失败与装载层同样归为数据集缺失
func ImportFile(db *sql.DB, path string, schema soildata.Schema, batch int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", soildata.ErrDatasetNotFound, err)
	}
	defer f.Close()
	return ImportDataset(db, f, path, schema, batch)
}

// EnsureInitialized：站点表为空时执行一次种子导入
// 为什么：简化部署流程，避免独立手动导入步骤
func EnsureInitialized(db *sql.DB, path string, schema soildata.Schema) error {
	var c int64
	row := db.QueryRow("SELECT COUNT(1) FROM _soil_sites")
	_ = row.Scan(&c)
	if c > 0 {
		return nil
	}
	_, err := ImportFile(db, path, schema, 0)
	return err
}
