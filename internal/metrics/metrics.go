package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ResolveRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soilapi_resolve_requests_total",
		Help: "Total number of resolve requests",
	})
	ResolveMissTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soilapi_resolve_miss_total",
		Help: "Total resolves with no site inside the radius",
	})
	ResolveDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "soilapi_resolve_duration_ms",
		Help:    "Resolve duration in milliseconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 20, 50, 100},
	})
	RecordRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soilapi_record_requests_total",
		Help: "Total number of exact record lookups",
	})
	DatasetRows = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "soilapi_dataset_rows",
		Help: "Sites in the active dataset",
	})
	DatasetLoadSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "soilapi_dataset_load_seconds",
		Help:    "Dataset load and index build duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
	})
	DatasetReloadTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soilapi_dataset_reload_total",
		Help: "Dataset reloads by outcome",
	}, []string{"status"})
	IngestRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soilapi_ingest_rows_total",
		Help: "Rows written to the site archive",
	})
)

func init() {
	prometheus.MustRegister(ResolveRequestsTotal)
	prometheus.MustRegister(ResolveMissTotal)
	prometheus.MustRegister(ResolveDurationMs)
	prometheus.MustRegister(RecordRequestsTotal)
	prometheus.MustRegister(DatasetRows)
	prometheus.MustRegister(DatasetLoadSeconds)
	prometheus.MustRegister(DatasetReloadTotal)
	prometheus.MustRegister(IngestRowsTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
