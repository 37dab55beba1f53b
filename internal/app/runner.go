package app

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Service 可被 Runner 托管的长驻组件
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行启动服务，任一退出即整体收尾
type Runner struct {
	services []Service
	cleanups []func() error
	logger *zap.SugaredLogger
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// OnShutdown 注册停机后的资源释放，按注册的逆序执行
func (r *Runner) OnShutdown(fn func() error) {
	if r == nil || fn == nil {
		return
	}
	r.cleanups = append(r.cleanups, fn)
}

type serviceExit struct {
	name string
	err  error
}

// Run 启动全部服务并阻塞，直到 ctx 取消或某个服务退出
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	for _, svc := range r.services {
		if svc == nil {
			return errors.New("service is nil")
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exits := make(chan serviceExit, len(r.services))
	for _, svc := range r.services {
		go func(svc Service) {
			r.infow("service_start", "service", svc.Name())
			exits <- serviceExit{name: svc.Name(), err: svc.Start(runCtx)}
		}(svc)
	}

	var runErr error
	select {
	case <-runCtx.Done():
		runErr = runCtx.Err()
	case exit := <-exits:
		if exit.err != nil {
			r.errorw("service_failed", "service", exit.name, "error", exit.err)
		} else {
			r.infow("service_exit", "service", exit.name)
		}
		runErr = exit.err
	}
	cancel()

	r.shutdown(stopTimeout)
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func (r *Runner) shutdown(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), timeout)
	defer stopCancel()

	for i := len(r.services) - 1; i >= 0; i-- {
		svc := r.services[i]
		if err := svc.Stop(stopCtx); err != nil {
			r.errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
	for i := len(r.cleanups) - 1; i >= 0; i-- {
		if err := r.cleanups[i](); err != nil {
			r.errorw("service_cleanup_failed", "error", err)
		}
	}
}

func (r *Runner) infow(msg string, kv ...interface{}) {
	if r.logger != nil {
		r.logger.Infow(msg, kv...)
	}
}

func (r *Runner) errorw(msg string, kv ...interface{}) {
	if r.logger != nil {
		r.logger.Errorw(msg, kv...)
	}
}
