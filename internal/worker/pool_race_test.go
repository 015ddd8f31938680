package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/smashlab/matchup-api/internal/models"
)

func TestPool_RaceCondition(t *testing.T) {
	conn := &MockClickHouseConn{}
	p := NewPool(PoolConfig{
		WorkerCount:   2,
		QueueSize:     1000,
		BatchSize:     10,
		FlushInterval: 10 * time.Millisecond,
		ClickHouse:    conn,
		Logger:        zap.NewNop(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	var accepted sync.WaitGroup
	var mu sync.Mutex
	count := 0

	producers := 10
	setsPerProducer := 100
	for i := 0; i < producers; i++ {
		accepted.Add(1)
		go func(i int) {
			defer accepted.Done()
			for j := 0; j < setsPerProducer; j++ {
				ok := p.Enqueue(&models.RawMatchRecord{
					SetID:       fmt.Sprintf("set-%d-%d", i, j),
					CompetitorA: "a",
					CompetitorB: "b",
					WinnerID:    "a",
				})
				if ok {
					mu.Lock()
					count++
					mu.Unlock()
				}
				if j%10 == 0 {
					time.Sleep(time.Millisecond)
				}
			}
		}(i)
	}

	accepted.Wait()
	p.Stop()

	if got := len(conn.sent()); got != count {
		t.Errorf("accepted %d sets but wrote %d", count, got)
	}
}
