package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"yatube/internal/config"
	"yatube/internal/pkg"
	"yatube/internal/pkg/logger"
	"yatube/internal/repository/mysql"
	"yatube/internal/repository/redis"
	"yatube/internal/router"
	"yatube/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("config", "config")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.Production); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.Server.Mode)

	db, err := mysql.InitDB(cfg.Database.DSN)
	if err != nil {
		logger.L.Fatal("init mysql", zap.Error(err))
	}
	// 自动建表
	if err = mysql.Migrate(db); err != nil {
		logger.L.Fatal("migrate", zap.Error(err))
	}

	// 连接redis
	rdb, err := redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.L.Fatal("init redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 分组只通过配置创建
	if err = service.NewGroupService(db).Seed(ctx, cfg.Groups); err != nil {
		logger.L.Fatal("seed groups", zap.Error(err))
	}

	// 后台任务：关注事件投递、关注数校正
	if len(cfg.Kafka.Brokers) > 0 {
		producer := pkg.NewKafkaProducer(pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic})
		defer producer.Close()
		go service.NewOutboxRelayer(db, service.KafkaSender(producer)).Run(ctx)
	} else {
		logger.L.Warn("kafka brokers not configured, follow events stay in outbox")
	}
	go service.NewFollowCountReconciler(db).Run(ctx)

	app, err := router.NewApp(router.Deps{DB: db, RDB: rdb, Config: cfg})
	if err != nil {
		logger.L.Fatal("build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           app.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.L.Info("server started", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.L.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("server shutdown", zap.Error(err))
	}
}
