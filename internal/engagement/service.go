// Package engagement 管理项目与投标的状态机，以及接受投标时跨实体的级联更新
package engagement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"freelance-marketplace/internal/global/lock"
	"freelance-marketplace/internal/global/metrics"
)

// Notifier 接收已提交的接受事件，失败不影响业务结果
type Notifier interface {
	ProposalAccepted(ctx context.Context, evt AcceptedEvent) error
}

type Service struct {
	store    Store
	locker   lock.Locker
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, locker lock.Locker, opts ...Option) *Service {
	s := &Service{
		store:  store,
		locker: locker,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func projectLockKey(projectID uint) string {
	return fmt.Sprintf("project:%d", projectID)
}

// withProjectLock 在项目级临界区内执行 fn；等锁超时视为冲突
func (s *Service) withProjectLock(ctx context.Context, projectID uint, fn func() error) error {
	unlock, err := s.locker.Lock(ctx, projectLockKey(projectID))
	if err != nil {
		if errors.Is(err, lock.ErrTimeout) {
			return Conflict("项目 %d 正在处理其他请求，请稍后重试", projectID)
		}
		return err
	}
	defer unlock()
	return fn()
}

// recordFailure 业务错误计数，基础设施错误不计
func recordFailure(entity string, err error) {
	if kind := KindOf(err); kind != "" {
		metrics.TransitionFailures.WithLabelValues(entity, string(kind)).Inc()
	}
}
