package scheduler

import (
	"context"
	"time"

	"clickboard/tools/logger"
)

// Runner 被定时触发的任务
type Runner interface {
	Run(ctx context.Context)
}

// Scheduler 按固定间隔触发拉取
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *logger.Logger
}

func New(runner Runner, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, log: log}
}

// Start 启动定时任务：立即执行一次，之后每个 interval 执行一次，ctx 结束时退出。
// 所有执行都在同一个 goroutine 中串行进行，上一次未结束时到期的 tick 由 Ticker 丢弃。
// 返回的 channel 在后台 goroutine 退出后关闭。
func (s *Scheduler) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	s.log.Info("Starting clicks scheduler, interval=%s", s.interval)

	ticker := time.NewTicker(s.interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		s.runner.Run(ctx)

		for {
			select {
			case <-ctx.Done():
				s.log.Info("Scheduler stopped")
				return
			case <-ticker.C:
				s.runner.Run(ctx)
			}
		}
	}()

	return done
}
