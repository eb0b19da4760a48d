// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"soil-api/internal/api"
	"soil-api/internal/ingest"
	"soil-api/internal/logger"
	"soil-api/internal/metrics"
	"soil-api/internal/middleware"
	"soil-api/internal/migrate"
	"soil-api/internal/objstore"
	"soil-api/internal/soildata"
	"soil-api/internal/store"
	"soil-api/internal/utils"
	"soil-api/internal/version"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok")
	l.Info("boot", "version", version.Version, "commit", version.Commit)

	apiBase := os.Getenv("API_BASE")
	if apiBase == "" {
		apiBase = "/api/v1"
	}
	l.Debug("config_api_base", "base", apiBase)

	// 数据源三选一：本地文本 / MinIO 对象 / 归档库
	source := os.Getenv("SOIL_SOURCE")
	if source == "" {
		source = "file"
	}
	schema, err := soildata.ParseSchema(os.Getenv("SOIL_SCHEMA"))
	if err != nil {
		l.Error("config_schema_error", "err", err)
		os.Exit(1)
	}
	dataPath := os.Getenv("SOIL_DATA_PATH")
	if dataPath == "" {
		dataPath = filepath.Join("data", "soil", "soil.dat")
	}
	l.Debug("config_source", "source", source, "schema", schema.String(), "path", dataPath)

	var st *store.Store
	if source == "postgres" {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = store.AttachDB(db)
		// 空库时用本地种子文件补一次初始导入；失败不致命，装载循环会暴露问题
		if err := ingest.EnsureInitialized(db, dataPath, schema); err != nil {
			l.Error("seed_import_error", "err", err)
		}
	}

	loadDataset := func(ctx context.Context) (*soildata.Dataset, error) {
		tBegin := time.Now()
		var (
			ds   *soildata.Dataset
			lerr error
		)
		switch source {
		case "postgres":
			ds, lerr = st.LoadDataset(ctx, schema, nil)
		case "minio":
			oc, cerr := objstore.NewFromEnv()
			if cerr != nil {
				lerr = cerr
				break
			}
			bucket := utils.Env("MINIO_BUCKET", "soil-data")
			object := utils.Env("MINIO_OBJECT", "soil.dat")
			ds, lerr = oc.LoadDataset(ctx, bucket, object, soildata.Loader{Schema: schema})
		default:
			ds, lerr = soildata.Loader{Schema: schema}.LoadFile(dataPath)
		}
		if lerr != nil {
			metrics.DatasetReloadTotal.WithLabelValues("error").Inc()
			return nil, lerr
		}
		metrics.DatasetReloadTotal.WithLabelValues("ok").Inc()
		metrics.DatasetRows.Set(float64(ds.Len()))
		metrics.DatasetLoadSeconds.Observe(time.Since(tBegin).Seconds())
		return ds, nil
	}

	// 背景：启动期后台装载，失败重试直至首个数据集就绪；就绪前 API 返回 503
	var dyn soildata.DynamicDataset
	go func() {
		for {
			ds, err := loadDataset(context.Background())
			if err != nil {
				l.Error("dataset_load_error", "source", source, "err", err)
				time.Sleep(2 * time.Second)
				continue
			}
			dyn.Set(ds)
			l.Info("dataset_ready", "source", ds.Source(), "sites", ds.Len(), "schema", ds.Schema().String())
			break
		}
	}()

	// 周度再导入后热替换数据集（仅归档库模式有意义）
	if st != nil && os.Getenv("SOIL_REFRESH_ENABLE") == "true" {
		ingest.StartWeeklyRefresh(st.DB(), dataPath, schema, func() {
			ds, err := loadDataset(context.Background())
			if err != nil {
				l.Error("dataset_reload_error", "err", err)
				return
			}
			dyn.Set(ds)
			l.Info("dataset_reloaded", "sites", ds.Len())
		})
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(&dyn, st)
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())
	mux.HandleFunc(apiBase+"/reload", func(w http.ResponseWriter, r *http.Request) {
		t := r.Header.Get("x-admin-token")
		if t == "" || t != os.Getenv("ADMIN_TOKEN") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		ds, err := loadDataset(r.Context())
		if err != nil {
			l.Error("dataset_reload_error", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		dyn.Set(ds)
		l.Info("dataset_reloaded", "sites", ds.Len())
		w.WriteHeader(http.StatusNoContent)
	})

	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = ":8080"
	}
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler}
	tlsEnable := os.Getenv("TLS_ENABLE")
	if tlsEnable == "" || tlsEnable == "true" {
		certPath := os.Getenv("TLS_CERT_PATH")
		keyPath := os.Getenv("TLS_KEY_PATH")
		if certPath == "" {
			certPath = filepath.Join("data", "certs", "server.crt")
		}
		if keyPath == "" {
			keyPath = filepath.Join("data", "certs", "server.key")
		}
		_ = utils.EnsureSelfSignedCert(certPath, keyPath, "soil-api.local")
		// 可选：启动HTTP重定向到HTTPS（不改变HTTPS运行端口）
		if os.Getenv("TLS_REDIRECT_ENABLE") == "true" {
			redirAddr := os.Getenv("TLS_REDIRECT_ADDR")
			if redirAddr == "" {
				redirAddr = ":80"
			}
			go func() {
				httpRedir := http.NewServeMux()
				httpRedir.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
					httpsPort := strings.TrimPrefix(addr, ":")
					baseHost := r.Host
					if i := strings.LastIndex(baseHost, ":"); i != -1 {
						baseHost = baseHost[:i]
					}
					targetHost := baseHost
					if httpsPort != "" {
						targetHost = baseHost + ":" + httpsPort
					}
					target := "https://" + targetHost + r.URL.RequestURI()
					http.Redirect(w, r, target, http.StatusMovedPermanently)
					l.Debug("http_redirect", "from", r.Host, "to", target)
				})
				l.Info("http_redirect_listening", "addr", redirAddr, "to", "https"+addr)
				_ = http.ListenAndServe(redirAddr, logger.AccessMiddleware(l)(httpRedir))
			}()
		}
		l.Info("listening_tls", "addr", addr, "cert", certPath)
		_ = s.ListenAndServeTLS(certPath, keyPath)
		return
	}
	l.Info("listening", "addr", addr)
	_ = s.ListenAndServe()
}
