package worker

import (
	"context"
	"errors"
	"time"

	"github.com/dujiao-next/storefront/internal/config"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

const sessionCleanupInterval = time.Hour

// SessionCleaner 定期清理过期会话
type SessionCleaner interface {
	CleanupExpiredSessions() (int64, error)
}

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	sessions SessionCleaner
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer, sessions SessionCleaner) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		sessions: sessions,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.sessions != nil {
		go runSessionCleanupLoop(ctx, s.sessions, sessionCleanupInterval)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func runSessionCleanupLoop(ctx context.Context, sessions SessionCleaner, interval time.Duration) {
	runOnce := func() {
		removed, err := sessions.CleanupExpiredSessions()
		if err != nil {
			logger.Warnw("worker_session_cleanup_failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Infow("worker_session_cleanup", "removed", removed)
		}
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
