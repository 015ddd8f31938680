package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/smashlab/matchup-api/internal/models"
)

// MockClickHouseConn implements driver.Conn for testing. Every sent batch's
// rows are collected in Rows.
type MockClickHouseConn struct {
	driver.Conn
	SendErr error

	mu      sync.Mutex
	Rows    [][]interface{}
	Batches int
}

func (m *MockClickHouseConn) PrepareBatch(ctx context.Context, query string, opts ...driver.PrepareBatchOption) (driver.Batch, error) {
	return &MockBatch{conn: m}, nil
}

func (m *MockClickHouseConn) sent() [][]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]interface{}(nil), m.Rows...)
}

type MockBatch struct {
	driver.Batch
	conn    *MockClickHouseConn
	pending [][]interface{}
}

func (m *MockBatch) Append(v ...interface{}) error {
	if len(v) != 11 {
		return errors.New("wrong column count")
	}
	m.pending = append(m.pending, v)
	return nil
}

func (m *MockBatch) Send() error {
	if m.conn.SendErr != nil {
		return m.conn.SendErr
	}
	m.conn.mu.Lock()
	defer m.conn.mu.Unlock()
	m.conn.Rows = append(m.conn.Rows, m.pending...)
	m.conn.Batches++
	return nil
}

// MockMatchupService counts rebuilds.
type MockMatchupService struct {
	mu       sync.Mutex
	Calls    int
	MinGames []int
	Err      error
}

func (m *MockMatchupService) Rebuild(ctx context.Context, minGames int) (*models.RebuildSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.MinGames = append(m.MinGames, minGames)
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.RebuildSummary{BuildID: "b"}, nil
}

func (m *MockMatchupService) List(ctx context.Context, limit, offset int) ([]models.MatchupView, int, error) {
	return nil, 0, nil
}

func (m *MockMatchupService) Get(ctx context.Context, a, b string) (*models.MatchupView, error) {
	return nil, nil
}

func (m *MockMatchupService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}
