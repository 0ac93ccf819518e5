package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aipath-api/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	mu       sync.Mutex
	stopped  bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

func (s *fakeService) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func TestRunnerStopsAllServicesWhenOneFails(t *testing.T) {
	healthy := &fakeService{name: "http"}
	broken := &fakeService{name: "worker", startErr: errors.New("redis down")}

	err := NewRunner(healthy, broken).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "worker: redis down" {
		t.Fatalf("expected start error, got %v", err)
	}
	if !healthy.isStopped() || !broken.isStopped() {
		t.Fatalf("all services should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "http"}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancel should stop cleanly, got %v", err)
	}
	if !svc.isStopped() {
		t.Fatalf("service should be stopped after cancel")
	}
}

func TestRunnerIgnoresNilServices(t *testing.T) {
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error when no services")
	}
}

func TestNewHTTPServiceAppliesTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "18080", WriteTimeoutSeconds: 5}, nil)
	if svc.server.Addr != "127.0.0.1:18080" {
		t.Fatalf("unexpected addr: %s", svc.server.Addr)
	}
	if svc.server.WriteTimeout != 5*time.Second {
		t.Fatalf("write timeout want 5s got %s", svc.server.WriteTimeout)
	}
	if svc.server.ReadHeaderTimeout != 10*time.Second {
		t.Fatalf("read header timeout want default 10s got %s", svc.server.ReadHeaderTimeout)
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected nil config error")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	withConfig := normalizeOptions(Options{Config: &config.Config{Server: config.ServerConfig{ShutdownTimeoutSeconds: 3}}})
	if withConfig.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout want 3s got %s", withConfig.ShutdownTimeout)
	}
}
