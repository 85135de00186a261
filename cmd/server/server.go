package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/global/engine"
	"freelance-marketplace/internal/global/httpclient"
	"freelance-marketplace/internal/global/logger"
	"freelance-marketplace/internal/global/middleware"
	internalOtel "freelance-marketplace/internal/global/otel"
	"freelance-marketplace/internal/global/redis"
	"freelance-marketplace/internal/global/sentry"
	"freelance-marketplace/internal/global/validate"
	"freelance-marketplace/internal/module"
	"freelance-marketplace/tools"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	tools.PanicOnErr(sentry.Init())
	database.Init()
	if config.Get().Lock.Backend == config.LockBackendRedis {
		redis.Init()
	}
	httpclient.Init()
	if config.Get().OTel.Enable {
		log.Info("OTel Enabled", "agent", net.JoinHostPort(config.Get().OTel.AgentHost, config.Get().OTel.AgentPort))
		internalOtel.Init()
	}
	validate.Init()
	engine.Init()

	for _, m := range module.Modules {
		log.Info("Init Module", "module", m.GetName())
		m.Init()
	}
}

func Run() {
	cfg := config.Get()
	gin.SetMode(string(cfg.Mode))
	r := gin.New()

	r.Use(sentry.Middleware())
	r.Use(middleware.SentryEnrichIP())
	r.Use(middleware.Logger(logger.Get(), cfg.Mode == config.ModeDebug))
	r.Use(middleware.Recovery(log))
	if cfg.OTel.Enable {
		r.Use(middleware.Trace())
	}

	for _, m := range module.Modules {
		log.Info("Init Router", "module", m.GetName())
		m.InitRouter(r.Group("/" + cfg.Prefix))
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           middleware.Cors(cfg.Cors).Handler(r),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("服务启动", "addr", srv.Addr, "mode", cfg.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("服务异常退出", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("收到退出信号，开始关闭")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP 服务关闭失败", "error", err)
	}
	if err := internalOtel.Shutdown(shutdownCtx); err != nil {
		log.Error("TracerProvider 关闭失败", "error", err)
	}
	sentry.Flush(2 * time.Second)
}
