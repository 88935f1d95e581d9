package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	exitNow  bool
	stopped  atomic.Bool
	stopCh   chan struct{}
}

func newFakeService(name string) *fakeService {
	return &fakeService{name: name, stopCh: make(chan struct{})}
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil || s.exitNow {
		return s.startErr
	}
	select {
	case <-ctx.Done():
	case <-s.stopCh:
	}
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	return nil
}

func TestRunnerStopsOthersOnFailure(t *testing.T) {
	failing := newFakeService("failing")
	failing.startErr = errors.New("bind: address already in use")
	blocking := newFakeService("blocking")

	err := NewRunner(failing, blocking).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "bind: address already in use" {
		t.Fatalf("want start error got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("blocking service should be stopped")
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := newFakeService("http")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(svc).Run(ctx, time.Second, nil)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled run want nil got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop after cancel")
	}
	if !svc.stopped.Load() {
		t.Fatalf("service should be stopped after cancel")
	}
}

func TestRunnerStopsWhenServiceExits(t *testing.T) {
	exiting := newFakeService("worker")
	exiting.exitNow = true
	blocking := newFakeService("http")

	if err := NewRunner(exiting, blocking).Run(context.Background(), time.Second, nil); err != nil {
		t.Fatalf("clean exit want nil got %v", err)
	}
	if !blocking.stopped.Load() {
		t.Fatalf("remaining service should be stopped")
	}
}

func TestRunnerRejectsEmpty(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("empty runner should fail")
	}
	if err := NewRunner(nil).Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("nil service should fail")
	}
}

func TestValidateMode(t *testing.T) {
	for _, mode := range []string{ModeAll, ModeAPI, ModeWorker} {
		if err := ValidateMode(mode); err != nil {
			t.Fatalf("mode %s should be valid: %v", mode, err)
		}
	}
	if err := ValidateMode("cron"); err == nil {
		t.Fatalf("unknown mode should be rejected")
	}
}
