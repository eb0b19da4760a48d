// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"soil-api/internal/metrics"
	"soil-api/internal/soildata"
	"soil-api/internal/store"
	"soil-api/internal/utils"
	"soil-api/internal/version"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func queryFloat(r *http.Request, key string) (float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, fmt.Errorf("missing query parameter %s", key)
	}
	// ParseFloat 接受 NaN/Inf 字面量，公共入参一律只收有限值
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("bad %s %q", key, s)
	}
	return v, nil
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到前缀之下
// 约束：数据集未就绪时业务端点一律 503；st 可为 nil（纯文件部署无归档库）
func BuildRoutes(dyn *soildata.DynamicDataset, st *store.Store) *http.ServeMux {
	defaultRadius := utils.EnvFloat("SOIL_MAX_RADIUS_DEG", 0.1)
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/resolve", func(w http.ResponseWriter, r *http.Request) {
		ds := dyn.Get()
		if ds == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "dataset not ready"})
			return
		}
		lon, err := queryFloat(r, "lon")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		lat, err := queryFloat(r, "lat")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		radius := defaultRadius
		if s := r.URL.Query().Get("radius"); s != "" {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				writeJSON(w, http.StatusBadRequest, errorResult{Error: "bad radius " + strconv.Quote(s)})
				return
			}
			radius = v
		}
		q := soildata.Coord{Lon: lon, Lat: lat}
		site, err := resolveQuery(r.Context(), st, ds, radius, q)
		if err != nil {
			switch {
			case errors.Is(err, soildata.ErrNoData):
				writeJSON(w, http.StatusNotFound, errorResult{Error: err.Error(), Query: &coordJSON{Lon: lon, Lat: lat}, RadiusDeg: radius})
			case errors.Is(err, soildata.ErrInvalidRadius):
				writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, errorResult{Error: err.Error()})
			}
			return
		}
		rec, _ := ds.Record(site) // FindClosest 命中的坐标必在表内
		writeJSON(w, http.StatusOK, resolveResult{
			Query:       coordJSON{Lon: lon, Lat: lat},
			Site:        coordJSON{Lon: site.Lon, Lat: site.Lat},
			DistanceDeg: site.Dist(q),
			Schema:      ds.Schema().String(),
			Record:      recordView(ds.Schema(), rec),
		})
	})

	apiMux.HandleFunc("/record", func(w http.ResponseWriter, r *http.Request) {
		ds := dyn.Get()
		if ds == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "dataset not ready"})
			return
		}
		lon, err := queryFloat(r, "lon")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		lat, err := queryFloat(r, "lat")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResult{Error: err.Error()})
			return
		}
		metrics.RecordRequestsTotal.Inc()
		c := soildata.Coord{Lon: lon, Lat: lat}
		rec, ok := ds.Record(c)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResult{Error: "no record at site coordinate", Query: &coordJSON{Lon: lon, Lat: lat}})
			return
		}
		writeJSON(w, http.StatusOK, recordResult{
			Site:   coordJSON{Lon: c.Lon, Lat: c.Lat},
			Schema: ds.Schema().String(),
			Record: recordView(ds.Schema(), rec),
		})
	})

	apiMux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		ds := dyn.Get()
		if ds == nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResult{Error: "dataset not ready"})
			return
		}
		out := infoResult{
			Sites:   ds.Len(),
			Schema:  ds.Schema().String(),
			Source:  ds.Source(),
			BuiltAt: ds.BuiltAt().Format(time.RFC3339),
			Bounds: boundsJSON{
				MinLon: ds.Bounds().MinLon,
				MinLat: ds.Bounds().MinLat,
				MaxLon: ds.Bounds().MaxLon,
				MaxLat: ds.Bounds().MaxLat,
			},
			Commit: version.Commit,
		}
		if st != nil {
			if t, err := st.GetTotals(r.Context()); err == nil {
				out.Requests = t.Requests
				out.Misses = t.Misses
			}
		}
		writeJSON(w, http.StatusOK, out)
	})

	apiMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if dyn.Get() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return apiMux
}
