package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	name     string
	startErr error
	block    bool

	mu      sync.Mutex
	stopped bool
	order   *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.order != nil {
		*s.order = append(*s.order, "stop:"+s.name)
	}
	return nil
}

func TestRunnerReturnsFirstServiceError(t *testing.T) {
	boom := errors.New("bind failed")
	var order []string
	api := &fakeService{name: "http", startErr: boom, order: &order}
	wk := &fakeService{name: "worker", block: true, order: &order}

	runner := NewRunner(api, wk)
	runner.OnShutdown(func() error {
		order = append(order, "cleanup")
		return nil
	})

	err := runner.Run(context.Background(), time.Second)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"stop:worker", "stop:http", "cleanup"}, order)
}

func TestRunnerContextCancelIsCleanExit(t *testing.T) {
	svc := &fakeService{name: "worker", block: true}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRunner(svc).Run(ctx, time.Second) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
	assert.True(t, svc.stopped)
}

func TestRunnerRejectsEmpty(t *testing.T) {
	assert.Error(t, NewRunner().Run(context.Background(), time.Second))
	assert.Error(t, NewRunner(nil).Run(context.Background(), time.Second))
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: "bogus"})
	assert.Equal(t, ModeAll, opts.Mode)
	assert.Equal(t, 10*time.Second, opts.ShutdownTimeout)
	assert.NotNil(t, opts.Logger)
}
