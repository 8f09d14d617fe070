package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PNG-POM/field-dashboard/internal/config"
	"github.com/PNG-POM/field-dashboard/internal/database"
	httpapi "github.com/PNG-POM/field-dashboard/internal/http"
	"github.com/PNG-POM/field-dashboard/internal/location"
	"github.com/PNG-POM/field-dashboard/internal/logger"
	"github.com/PNG-POM/field-dashboard/internal/photos"
	"github.com/PNG-POM/field-dashboard/internal/repository"
	"github.com/PNG-POM/field-dashboard/internal/service"
	"github.com/PNG-POM/field-dashboard/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "field-dashboard")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Warn("invalid TIME_ZONE, falling back to local", zap.String("tz", cfg.Timezone), zap.Error(err))
		loc = time.Local
	}

	// KV：有 redis 用 redis，否则进程内存（token 重启即失效，可接受）
	var kv store.KV
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
	} else {
		kv = store.NewMemoryKV()
	}

	// 访问日志存储：Excel 为默认后端，postgres 为可选事务型后端
	var visits repository.VisitLog
	var db *sql.DB
	switch cfg.Store.Backend {
	case "postgres":
		db, err = database.NewPostgresDB(cfg)
		if err != nil {
			log.Fatal("postgres backend selected but connection failed", zap.Error(err))
		}
		visits = repository.NewPostgresVisitLog(db)
		log.Info("visit log backend: postgres")
	default:
		visits = repository.NewExcelVisitLog(cfg.Store.LogPath, loc)
		log.Info("visit log backend: excel", zap.String("path", cfg.Store.LogPath))
	}

	master := repository.NewExcelMasterDirectory(cfg.Store.MasterPath)

	photoStore, err := photos.NewStore(cfg.Store.PhotoDir, log)
	if err != nil {
		log.Fatal("photo store init failed", zap.Error(err))
	}

	visitSvc := service.NewVisitService(visits, master, loc, log)
	reportSvc := service.NewReportService(visits, loc, log)

	// 服务端没有可靠的定位来源；坐标由表单提交，Provider 留空
	locator := location.NewBounded(nil, cfg.Location.Timeout)

	gate := httpapi.NewAdminGate(cfg.Admin.Password, cfg.Admin.TokenTTL, kv)

	router := httpapi.NewRouter(log)
	router.RegisterVisitRoutes(httpapi.NewVisitHandler(visitSvc, photoStore, locator, log))
	router.RegisterAdminRoutes(httpapi.NewAdminHandler(gate, reportSvc, photoStore, loc, log))
	router.HandleHandler("/metrics", promhttp.Handler())
	router.Handle("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 备份上传只读已落盘的文件，与会话逻辑相互独立
	if cfg.Backup.Enabled && cfg.Backup.URL != "" && cfg.Store.Backend == "excel" {
		backup := service.NewBackupService(cfg.Backup.URL, cfg.Backup.Token, cfg.Store.LogPath, cfg.Backup.Interval, log)
		go backup.Run(ctx)
	}

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
