// Package lock 提供按 key 互斥的临界区，用于串行化同一项目上的级联写入
package lock

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout 在等待时间内未能获取锁
var ErrTimeout = errors.New("lock: wait timeout")

// Locker 获取 key 对应的互斥锁，返回的 unlock 可重复调用
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Options 锁的时间参数
type Options struct {
	TTL   time.Duration // 持有者崩溃时锁的自动过期时间，仅 redis 实现使用
	Wait  time.Duration // 最长等待时间
	Retry time.Duration // 轮询间隔，仅 redis 实现使用
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = 10 * time.Second
	}
	if o.Wait <= 0 {
		o.Wait = 3 * time.Second
	}
	if o.Retry <= 0 {
		o.Retry = 50 * time.Millisecond
	}
	return o
}
