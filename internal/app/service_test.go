package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopizen/internal/config"
)

type recordingService struct {
	name     string
	startErr error
	block    bool
	log      *stopLog
}

type stopLog struct {
	mu    sync.Mutex
	order []string
}

func (l *stopLog) add(name string) {
	l.mu.Lock()
	l.order = append(l.order, name)
	l.mu.Unlock()
}

func (s *recordingService) Name() string { return s.name }

func (s *recordingService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *recordingService) Stop(context.Context) error {
	s.log.add(s.name)
	return nil
}

func TestRunnerStopsInReverseOrder(t *testing.T) {
	log := &stopLog{}
	runner := NewRunner(
		&recordingService{name: "workspace", block: true, log: log},
		nil,
		&recordingService{name: "http", block: true, log: log},
	)
	if names := runner.Names(); len(names) != 2 {
		t.Fatalf("nil services should be skipped, got %v", names)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := runner.Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("cancelled run should return nil, got %v", err)
	}
	if len(log.order) != 2 || log.order[0] != "http" || log.order[1] != "workspace" {
		t.Fatalf("unexpected stop order: %v", log.order)
	}
}

func TestRunnerReturnsServiceError(t *testing.T) {
	log := &stopLog{}
	boom := errors.New("listen failed")
	runner := NewRunner(
		&recordingService{name: "workspace", block: true, log: log},
		&recordingService{name: "http", startErr: boom, log: log},
	)
	if err := runner.Run(context.Background(), time.Second, nil); !errors.Is(err, boom) {
		t.Fatalf("want start error, got %v", err)
	}
	if len(log.order) != 2 {
		t.Fatalf("all services should be stopped, got %v", log.order)
	}
}

func TestRunnerRunsCleanupAfterServicesStop(t *testing.T) {
	log := &stopLog{}
	runner := NewRunner(&recordingService{name: "http", startErr: errors.New("boom"), log: log})
	runner.OnShutdown(func() { log.add("cleanup") })
	runner.OnShutdown(nil)
	_ = runner.Run(context.Background(), time.Second, nil)
	if len(log.order) != 2 || log.order[0] != "http" || log.order[1] != "cleanup" {
		t.Fatalf("cleanup should run after stop, got %v", log.order)
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]string{"": ModeAll, " API ": ModeAPI, "worker": ModeWorker}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) want %s got %s err=%v", raw, want, got, err)
		}
	}
	if _, err := ParseMode("cron"); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestNormalizeOptionsUsesServerShutdownTimeout(t *testing.T) {
	cfg := config.Defaults()
	cfg.Server.ShutdownTimeoutSeconds = 3
	opts := normalizeOptions(Options{Config: cfg})
	if opts.ShutdownTimeout != 3*time.Second {
		t.Fatalf("shutdown timeout want 3s got %s", opts.ShutdownTimeout)
	}
	if opts.Mode != ModeAll || opts.Logger == nil {
		t.Fatalf("defaults not applied: %+v", opts)
	}
}

func TestNewHTTPServiceAppliesTimeouts(t *testing.T) {
	svc := NewHTTPService(config.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeoutSeconds: 5}, nil)
	if svc.Addr() != "127.0.0.1:0" {
		t.Fatalf("unexpected addr %s", svc.Addr())
	}
	if svc.server.ReadTimeout != 5*time.Second || svc.server.WriteTimeout != 0 {
		t.Fatalf("unexpected timeouts read=%s write=%s", svc.server.ReadTimeout, svc.server.WriteTimeout)
	}
}
