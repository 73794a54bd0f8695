package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signing-oracle/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Config struct {
	HttpPort string
}

type App struct {
	httpServer *http.Server
}

func New(cfg Config, httpHandler *gin.Engine) *App {
	return &App{
		httpServer: &http.Server{
			Addr:              ":" + cfg.HttpPort,
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run 启动服务并阻塞，直到收到关闭信号
func (a *App) Run() {
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP Server failure", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
	}
	logger.Info("Server exited properly")
}
