package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"

	"github.com/smashlab/matchup-api/internal/models"
)

// MockPgConn implements PgConn with overridable behavior.
type MockPgConn struct {
	QueryFunc     func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRowFunc  func(ctx context.Context, sql string, args ...any) pgx.Row
	ExecFunc      func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginFunc     func(ctx context.Context) (pgx.Tx, error)
	SendBatchFunc func(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

func (m *MockPgConn) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, args...)
	}
	return &MockPgRows{}, nil
}

func (m *MockPgConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, args...)
	}
	return &MockPgRow{Err: pgx.ErrNoRows}
}

func (m *MockPgConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockPgConn) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return nil, errors.New("no tx")
}

func (m *MockPgConn) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	if m.SendBatchFunc != nil {
		return m.SendBatchFunc(ctx, b)
	}
	return &MockBatchResults{}
}

// MockTx records what a transaction was asked to do. Methods not overridden
// fall through to the embedded nil interface and panic.
type MockTx struct {
	pgx.Tx
	Execs      []string
	ExecArgs   [][]any
	Copied     [][]any
	CopyErr    error
	Committed  bool
	RolledBack bool
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Execs = append(m.Execs, sql)
	m.ExecArgs = append(m.ExecArgs, args)
	return pgconn.CommandTag{}, nil
}

func (m *MockTx) CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error) {
	if m.CopyErr != nil {
		return 0, m.CopyErr
	}
	for src.Next() {
		vals, err := src.Values()
		if err != nil {
			return 0, err
		}
		m.Copied = append(m.Copied, vals)
	}
	return int64(len(m.Copied)), src.Err()
}

func (m *MockTx) Commit(ctx context.Context) error {
	m.Committed = true
	return nil
}

func (m *MockTx) Rollback(ctx context.Context) error {
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockPgRow scans fixed values into pointers of matching type.
type MockPgRow struct {
	Values []any
	Err    error
}

func (m *MockPgRow) Scan(dest ...any) error {
	if m.Err != nil {
		return m.Err
	}
	return assign(dest, m.Values)
}

// MockPgRows iterates over Data.
type MockPgRows struct {
	Data [][]any
	pos  int
}

func (m *MockPgRows) Close()                                       {}
func (m *MockPgRows) Err() error                                   { return nil }
func (m *MockPgRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *MockPgRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *MockPgRows) Values() ([]any, error)                       { return m.Data[m.pos-1], nil }
func (m *MockPgRows) RawValues() [][]byte                          { return nil }
func (m *MockPgRows) Conn() *pgx.Conn                              { return nil }

func (m *MockPgRows) Next() bool {
	if m.pos >= len(m.Data) {
		return false
	}
	m.pos++
	return true
}

func (m *MockPgRows) Scan(dest ...any) error {
	return assign(dest, m.Data[m.pos-1])
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

// MockBatchResults answers every queued statement with ExecErr.
type MockBatchResults struct {
	Execs   int
	ExecErr error
	Closed  bool
}

func (m *MockBatchResults) Exec() (pgconn.CommandTag, error) {
	m.Execs++
	return pgconn.CommandTag{}, m.ExecErr
}

func (m *MockBatchResults) Query() (pgx.Rows, error) { return &MockPgRows{}, nil }
func (m *MockBatchResults) QueryRow() pgx.Row        { return &MockPgRow{} }

func (m *MockBatchResults) Close() error {
	m.Closed = true
	return nil
}

// MockCacheClient is an in-memory CacheClient.
type MockCacheClient struct {
	Data map[string]string
	TTLs map[string]time.Duration
}

func NewMockCacheClient() *MockCacheClient {
	return &MockCacheClient{Data: make(map[string]string), TTLs: make(map[string]time.Duration)}
}

func (m *MockCacheClient) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.Data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *MockCacheClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.Data[key] = string(v)
	default:
		m.Data[key] = fmt.Sprint(v)
	}
	m.TTLs[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *MockCacheClient) Incr(ctx context.Context, key string) *redis.IntCmd {
	n, _ := strconv.ParseInt(m.Data[key], 10, 64)
	n++
	m.Data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// MockClickHouseConn implements driver.Conn for testing.
type MockClickHouseConn struct {
	driver.Conn
	Sets     []models.ClickHouseSet
	Executed []string
	QueryErr error
}

func (m *MockClickHouseConn) Exec(ctx context.Context, query string, args ...interface{}) error {
	m.Executed = append(m.Executed, query)
	return nil
}

func (m *MockClickHouseConn) Query(ctx context.Context, query string, args ...interface{}) (driver.Rows, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	return &MockCHRows{sets: m.Sets}, nil
}

// MockCHRows implements driver.Rows over a slice of sets.
type MockCHRows struct {
	driver.Rows
	sets []models.ClickHouseSet
	pos  int
}

func (m *MockCHRows) Next() bool {
	if m.pos >= len(m.sets) {
		return false
	}
	m.pos++
	return true
}

func (m *MockCHRows) ScanStruct(dest interface{}) error {
	*(dest.(*models.ClickHouseSet)) = m.sets[m.pos-1]
	return nil
}

func (m *MockCHRows) Close() error { return nil }
func (m *MockCHRows) Err() error   { return nil }
