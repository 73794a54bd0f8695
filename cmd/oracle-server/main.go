package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"signing-oracle/internal/handler"
	"signing-oracle/internal/oracle"
	"signing-oracle/internal/server"
	"signing-oracle/internal/store"

	"signing-oracle/pkg/cache"
	"signing-oracle/pkg/config"
	"signing-oracle/pkg/logger"
	"signing-oracle/pkg/monitor"
	"signing-oracle/pkg/validator"

	"go.uber.org/zap"

	_ "signing-oracle/docs/swagger"
)

// @title Signing Oracle API
// @version 1.0
// @description 验证 Kadena 硬件签名结果的服务
// @BasePath /
func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.Parse()

	// 0. 初始化 Config
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	// 1. 初始化 Logger
	if err := logger.Init(cfg.App.Env, cfg.App.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 初始化 Validator
	validator.Init()

	// 2. 初始化监控指标 (oracle 需要 monitor.Business)
	monitor.Init()

	// 3. 选择缓存
	c, err := newCache(cfg.Cache)
	if err != nil {
		logger.Fatal("缓存初始化失败", zap.Error(err))
	}
	attempts := store.NewAttemptStore(c, cfg.Cache.TTL)

	// 4. Oracle
	o := oracle.New(logger.Named("oracle"), oracle.WithRecorder(monitor.Business))

	// 5. HTTP
	h := handler.NewOracleHandler(o, attempts, cfg.Oracle)
	r := server.NewHTTPRouter(h)

	logger.Info("Signing oracle ready",
		zap.String("env", cfg.App.Env),
		zap.String("cache", cfg.Cache.Type),
		zap.String("default_path", cfg.Oracle.DefaultPath),
	)
	server.New(server.Config{HttpPort: cfg.Server.HttpPort}, r).Run()
}

// newCache memory: 仅本地；redis: L1 内存 + L2 Redis
func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	local := cache.NewMemoryCache(cfg.TTL, 5*time.Minute)
	if cfg.Type != "redis" {
		return local, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rdb, err := cache.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return cache.NewMultiLevelCache(local, cache.NewRedisCache(rdb, "")), nil
}
