package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRebuildScheduler_Runs(t *testing.T) {
	svc := &MockMatchupService{}
	s := NewRebuildScheduler(svc, 5*time.Millisecond, 7, zap.NewNop())
	s.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for svc.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	if svc.calls() < 2 {
		t.Fatalf("expected at least 2 rebuilds, got %d", svc.calls())
	}
	if svc.MinGames[0] != 7 {
		t.Errorf("minGames = %d, want 7", svc.MinGames[0])
	}
}

func TestRebuildScheduler_ErrorsDoNotStop(t *testing.T) {
	svc := &MockMatchupService{Err: errors.New("clickhouse down")}
	s := NewRebuildScheduler(svc, 5*time.Millisecond, 5, zap.NewNop())
	s.Start(context.Background())

	deadline := time.Now().Add(time.Second)
	for svc.calls() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	if svc.calls() < 2 {
		t.Errorf("scheduler should keep running after a failed rebuild, got %d calls", svc.calls())
	}
}

func TestRebuildScheduler_Disabled(t *testing.T) {
	svc := &MockMatchupService{}
	s := NewRebuildScheduler(svc, 0, 5, zap.NewNop())
	s.Start(context.Background())
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	if svc.calls() != 0 {
		t.Errorf("disabled scheduler ran %d rebuilds", svc.calls())
	}
}
