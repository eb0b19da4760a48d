// 批量解析工具：把网格清单中的每个格点一次性解析到最近土壤站点并输出 CSV
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"soil-api/internal/config"
	"soil-api/internal/gridlist"
	"soil-api/internal/logger"
	"soil-api/internal/objstore"
	"soil-api/internal/soildata"
	"soil-api/internal/store"
	"soil-api/internal/utils"

	"github.com/joho/godotenv"
)

// 按配置的来源装载数据集；归档库连接只在装载期存在
func loadDataset(ctx context.Context, cfg *config.Run, filter soildata.RowFilter) (*soildata.Dataset, error) {
	loader := soildata.Loader{Schema: cfg.Schema(), Filter: filter}
	switch cfg.Dataset.Source {
	case "minio":
		oc, err := objstore.NewFromEnv()
		if err != nil {
			return nil, err
		}
		return oc.LoadDataset(ctx, cfg.Dataset.Bucket, cfg.Dataset.Object, loader)
	case "postgres":
		st, err := store.Open(utils.BuildPostgresDSNFromEnv())
		if err != nil {
			return nil, err
		}
		defer st.Close()
		return st.LoadDataset(ctx, cfg.Schema(), filter)
	default:
		return loader.LoadFile(cfg.Dataset.Path)
	}
}

func fmtCoord(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func main() {
	cfgPath := flag.String("config", "run.yml", "run configuration file")
	flag.Parse()

	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	l := logger.Setup()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	cells, err := gridlist.ParseFile(cfg.Gridlist)
	if err != nil {
		l.Error("gridlist_error", "err", err)
		os.Exit(1)
	}
	l.Info("gridlist_loaded", "cells", len(cells), "path", cfg.Gridlist)

	var filter soildata.RowFilter
	if cfg.RestrictToGridlist {
		filter = soildata.KeepWithin(gridlist.CoordSet(cells))
	}
	tBegin := time.Now()
	ds, err := loadDataset(context.Background(), cfg, filter)
	if err != nil {
		l.Error("dataset_load_error", "source", cfg.Dataset.Source, "err", err)
		os.Exit(1)
	}
	l.Info("dataset_ready", "source", ds.Source(), "sites", ds.Len(), "load_ms", time.Since(tBegin).Milliseconds())

	// 固定工位并发解析；rows 按格点下标写入，互不重叠，输出顺序与清单一致
	type row struct {
		site soildata.Coord
		dist float64
		ok   bool
	}
	rows := make([]row, len(cells))
	jobs := make(chan int, 1024)
	var resolved, missed int64
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := cells[i]
				site, err := ds.FindClosest(cfg.Search.MaxRadiusDeg, c.Coord)
				if err != nil {
					atomic.AddInt64(&missed, 1)
					l.Warn("cell_miss", "lon", c.Coord.Lon, "lat", c.Coord.Lat, "name", c.Name, "err", err)
					continue
				}
				rows[i] = row{site: site, dist: site.Dist(c.Coord), ok: true}
				if n := atomic.AddInt64(&resolved, 1); n%10000 == 0 {
					l.Debug("resolve_progress", "resolved", n)
				}
			}
		}()
	}
	for i := range cells {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out, err := os.Create(cfg.Output.CSV)
	if err != nil {
		l.Error("output_open_error", "path", cfg.Output.CSV, "err", err)
		os.Exit(1)
	}
	w := csv.NewWriter(out)
	_ = w.Write([]string{"cell_lon", "cell_lat", "site_lon", "site_lat", "distance_deg", "status"})
	for i, c := range cells {
		r := rows[i]
		if !r.ok {
			_ = w.Write([]string{fmtCoord(c.Coord.Lon), fmtCoord(c.Coord.Lat), "", "", "", "no_data"})
			continue
		}
		_ = w.Write([]string{fmtCoord(c.Coord.Lon), fmtCoord(c.Coord.Lat), fmtCoord(r.site.Lon), fmtCoord(r.site.Lat), fmtCoord(r.dist), "ok"})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		l.Error("output_write_error", "path", cfg.Output.CSV, "err", err)
		os.Exit(1)
	}
	if err := out.Close(); err != nil {
		l.Error("output_close_error", "path", cfg.Output.CSV, "err", err)
		os.Exit(1)
	}

	l.Info("resolve_done", "cells", len(cells), "resolved", resolved, "missed", missed,
		"elapsed_ms", time.Since(tBegin).Milliseconds(), "csv", cfg.Output.CSV)
	if len(cells) > 0 && resolved == 0 {
		l.Error("all_cells_missed", "radius", cfg.Search.MaxRadiusDeg)
		os.Exit(1)
	}
}
