package api

import (
	"context"
	"errors"
	"time"

	"soil-api/internal/logger"
	"soil-api/internal/metrics"
	"soil-api/internal/soildata"
	"soil-api/internal/store"
)

// 文档注释：进程内解析入口（HTTP 处理器共用）
// 背景：在数据集查询外统一叠加指标打点与当日统计落库；统计失败不影响
// 主流程，归档库可为空（纯文件部署）。
// 返回：命中站点坐标；未命中把 ErrNoData 原样透传，调用方负责状态码映射。
func resolveQuery(ctx context.Context, st *store.Store, ds *soildata.Dataset, radius float64, q soildata.Coord) (soildata.Coord, error) {
	tBegin := time.Now()
	metrics.ResolveRequestsTotal.Inc()
	site, err := ds.FindClosest(radius, q)
	metrics.ResolveDurationMs.Observe(float64(time.Since(tBegin).Nanoseconds()) / 1e6)
	if err != nil {
		if errors.Is(err, soildata.ErrNoData) {
			metrics.ResolveMissTotal.Inc()
			if st != nil {
				_ = st.BumpResolveStats(ctx, 1, 1)
			}
			logger.L().Debug("resolve_miss", "lon", q.Lon, "lat", q.Lat, "radius", radius)
		}
		return soildata.Coord{}, err
	}
	if st != nil {
		_ = st.BumpResolveStats(ctx, 1, 0)
	}
	logger.L().Debug("resolve_ok", "lon", q.Lon, "lat", q.Lat, "site_lon", site.Lon, "site_lat", site.Lat)
	return site, nil
}

// recordView 按模式挑选对外记录形态。
func recordView(schema soildata.Schema, rec soildata.Record) any {
	if schema == soildata.SchemaCode {
		return codeJSON{Code: rec.Code}
	}
	return mineralJSON{
		Sand:        rec.Sand,
		Silt:        rec.Silt,
		Clay:        rec.Clay,
		OrgCarbon:   rec.OrgCarbon,
		BulkDensity: rec.BulkDensity,
		PH:          rec.PH,
		SoilCarbon:  rec.SoilCarbon,
		CN:          rec.CN,
	}
}
