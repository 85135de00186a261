// Package engine 按配置组装项目与投标的业务服务
package engine

import (
	"log/slog"
	"time"

	"freelance-marketplace/config"
	"freelance-marketplace/internal/engagement"
	"freelance-marketplace/internal/global/database"
	"freelance-marketplace/internal/global/httpclient"
	"freelance-marketplace/internal/global/lock"
	"freelance-marketplace/internal/global/logger"
	"freelance-marketplace/internal/global/notify"
	"freelance-marketplace/internal/global/redis"
)

// Service 全局业务服务，在 database、redis、httpclient 初始化之后调用 Init
var Service *engagement.Service

func Init() {
	log := logger.New("Engagement")
	Service = engagement.NewService(
		engagement.NewGormStore(database.DB),
		NewLocker(config.Get().Lock, log),
		Options(log)...,
	)
}

// NewLocker redis 未初始化时退回进程内实现
func NewLocker(c config.Lock, log *slog.Logger) lock.Locker {
	opts := lock.Options{
		TTL:   time.Duration(c.TTLMs) * time.Millisecond,
		Wait:  time.Duration(c.WaitMs) * time.Millisecond,
		Retry: time.Duration(c.RetryMs) * time.Millisecond,
	}
	if c.Backend == config.LockBackendRedis && redis.Client != nil {
		log.Info("使用 redis 项目锁")
		return lock.NewRedisLocker(redis.Client, opts, log)
	}
	log.Info("使用进程内项目锁")
	return lock.NewLocalLocker(opts)
}

// Options 日志与通知相关的服务选项
func Options(log *slog.Logger) []engagement.Option {
	opts := []engagement.Option{engagement.WithLogger(log)}
	if url := config.Get().Notify.WebhookURL; url != "" && httpclient.Client != nil {
		timeout := time.Duration(config.Get().Notify.TimeoutMs) * time.Millisecond
		opts = append(opts, engagement.WithNotifier(notify.NewWebhook(httpclient.Client, url, timeout)))
	}
	return opts
}
