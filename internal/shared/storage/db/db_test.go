package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func resetShared(t *testing.T) {
	t.Helper()
	singletonMu.Lock()
	singletonDB = nil
	singletonMu.Unlock()
}

func TestSharedReturnsSamePointer(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()
	resetShared(t)

	db1, err := shared(context.Background(), "ignored", DefaultOptions(RuntimeLambda))
	if err != nil {
		t.Fatalf("shared first: %v", err)
	}
	db2, err := shared(context.Background(), "ignored", DefaultOptions(RuntimeLambda))
	if err != nil {
		t.Fatalf("shared second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected shared pointers to match")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultOptions(RuntimeServer))
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
	want := Options{MaxOpenConns: 7, MaxIdleConns: 3, ConnMaxLifetime: 20 * time.Minute, ConnMaxIdleTime: 45 * time.Second, PingTimeout: time.Second}
	if opts != want {
		t.Fatalf("expected %+v, got %+v", want, opts)
	}
}

func TestOptionsFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "many")
	t.Setenv("DB_PING_TIMEOUT", "soon")

	opts := OptionsFromEnv(DefaultOptions(RuntimeMigrate))
	if opts != DefaultOptions(RuntimeMigrate) {
		t.Fatalf("expected migrate defaults, got %+v", opts)
	}
}

func TestDefaultOptionsUnknownRuntime(t *testing.T) {
	if got := DefaultOptions(Runtime("batch")); got != DefaultOptions(RuntimeServer) {
		t.Fatalf("expected server defaults, got %+v", got)
	}
}

func TestSharedRetriesAfterFailure(t *testing.T) {
	var calls int32
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, driver.ErrBadConn
		}
		ensureTestDriverRegistered()
		return sql.Open("dbtest", dsn)
	}
	defer func() {
		openDB = prev
	}()
	ensureTestDriverRegistered()
	resetShared(t)

	if _, err := shared(context.Background(), "ignored", DefaultOptions(RuntimeLambda)); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db2, err := shared(context.Background(), "ignored", DefaultOptions(RuntimeLambda))
	if err != nil {
		t.Fatalf("expected second call to succeed: %v", err)
	}
	if db2 == nil {
		t.Fatalf("expected db after retry")
	}
}

func TestConnectForRuntimeSharesPoolInLambda(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()
	resetShared(t)

	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "resume-extractor")
	if rt := DetectRuntime(); rt != RuntimeLambda {
		t.Fatalf("expected lambda runtime, got %q", rt)
	}
	db1, err := ConnectForRuntime(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("ConnectForRuntime: %v", err)
	}
	db2, err := ConnectForRuntime(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("ConnectForRuntime second: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected lambda connections to share one pool")
	}
	if got := db1.Stats().MaxOpenConnections; got != DefaultOptions(RuntimeLambda).MaxOpenConns {
		t.Fatalf("expected lambda pool size %d, got %d", DefaultOptions(RuntimeLambda).MaxOpenConns, got)
	}
}

func TestConnectForRuntimeServerPoolsAreSeparate(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	db1, err := ConnectForRuntime(context.Background(), "ignored")
	if err != nil {
		t.Fatalf("ConnectForRuntime: %v", err)
	}
	defer db1.Close()
	if got := db1.Stats().MaxOpenConnections; got != DefaultOptions(RuntimeServer).MaxOpenConns {
		t.Fatalf("expected server pool size %d, got %d", DefaultOptions(RuntimeServer).MaxOpenConns, got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultOptions(RuntimeServer)); err == nil {
		t.Fatalf("expected error for empty DATABASE_URL")
	}
}

func TestEmbeddedMigrationsHaveGooseSections(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("expected embedded migrations")
	}
	for _, entry := range entries {
		raw, err := migrationFiles.ReadFile(migrationsDir + "/" + entry.Name())
		if err != nil {
			t.Fatalf("ReadFile %s: %v", entry.Name(), err)
		}
		text := string(raw)
		if !strings.Contains(text, "-- +goose Up") || !strings.Contains(text, "-- +goose Down") {
			t.Fatalf("%s: missing goose annotations", entry.Name())
		}
	}
}
