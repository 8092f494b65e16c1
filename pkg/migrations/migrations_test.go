package migrations

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *testLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}
func (l *testLogger) Warn(string, ...any)  {}
func (l *testLogger) Error(string, ...any) {}

type fakeMigrator struct {
	upErr    error
	steps    []int
	version  uint
	verErr   error
	closed   atomic.Bool
	blockCh  chan struct{}
	closeOne sync.Once
}

func (m *fakeMigrator) Up() error {
	if m.blockCh != nil {
		<-m.blockCh
	}
	return m.upErr
}

func (m *fakeMigrator) Steps(n int) error {
	m.steps = append(m.steps, n)
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	return m.version, false, m.verErr
}

func (m *fakeMigrator) Close() (error, error) {
	m.closeOne.Do(func() {
		m.closed.Store(true)
		if m.blockCh != nil {
			close(m.blockCh)
		}
	})
	return nil, nil
}

type factoryCall struct {
	sourceURL string
	dbName    string
	cfg       Config
}

// stubFactories swaps the driver and migrator factories for the test.
func stubFactories(t *testing.T, m *fakeMigrator, initErr error) *factoryCall {
	t.Helper()

	origDriver, origMigrator := driverFactory, migratorFactory
	t.Cleanup(func() {
		driverFactory, migratorFactory = origDriver, origMigrator
	})

	call := &factoryCall{}
	driverFactory = func(_ *sql.DB, cfg Config) (database.Driver, error) {
		call.cfg = cfg
		return nil, nil
	}
	migratorFactory = func(sourceURL, dbName string, _ database.Driver) (migrator, error) {
		call.sourceURL, call.dbName = sourceURL, dbName
		if initErr != nil {
			return nil, initErr
		}
		return m, nil
	}
	return call
}

func TestUp_NilDB(t *testing.T) {
	assert.Error(t, Up(context.Background(), nil, Config{}))
}

func TestUp_CancelledContextSkipsFactories(t *testing.T) {
	call := stubFactories(t, &fakeMigrator{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Up(ctx, &sql.DB{}, Config{Dir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, call.sourceURL)
}

func TestUp_DeadlineClosesMigrator(t *testing.T) {
	m := &fakeMigrator{blockCh: make(chan struct{})}
	stubFactories(t, m, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := Up(ctx, &sql.DB{}, Config{Dir: t.TempDir()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, m.closed.Load())
}

func TestUp_NoChangeIsSuccess(t *testing.T) {
	stubFactories(t, &fakeMigrator{upErr: migrate.ErrNoChange}, nil)
	logger := &testLogger{}

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Logger: logger}))
	assert.Contains(t, logger.infos, "No migrations to apply")
}

func TestUp_AppliesAndDefaults(t *testing.T) {
	m := &fakeMigrator{}
	call := stubFactories(t, m, nil)
	logger := &testLogger{}

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Logger: logger}))

	assert.Contains(t, logger.infos, "Migrations applied successfully")
	assert.Equal(t, DriverPostgres, call.dbName)
	assert.Equal(t, "schema_migrations", call.cfg.MigrationsTable)
	assert.True(t, m.closed.Load())
}

func TestUp_SQLiteDriverName(t *testing.T) {
	call := stubFactories(t, &fakeMigrator{}, nil)

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir(), Driver: DriverSQLite}))
	assert.Equal(t, DriverSQLite, call.dbName)
}

func TestUp_UpError(t *testing.T) {
	stubFactories(t, &fakeMigrator{upErr: errors.New("syntax error at or near")}, nil)

	err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})
	assert.ErrorContains(t, err, "migrations: up")
}

func TestUp_InitError(t *testing.T) {
	stubFactories(t, nil, errors.New("boom"))

	err := Up(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})
	assert.ErrorContains(t, err, "migrations: init")
}

func TestUp_SourceURLEscapesPaths(t *testing.T) {
	call := stubFactories(t, &fakeMigrator{}, nil)

	dir := filepath.Join(t.TempDir(), "my migrations dir")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	require.NoError(t, Up(context.Background(), &sql.DB{}, Config{Dir: dir}))

	parsed, err := url.Parse(call.sourceURL)
	require.NoError(t, err)

	abs, _ := filepath.Abs(dir)
	assert.Equal(t, "file", parsed.Scheme)
	assert.Equal(t, filepath.ToSlash(abs), parsed.Path)
}

func TestDown(t *testing.T) {
	m := &fakeMigrator{}
	stubFactories(t, m, nil)

	assert.Error(t, Down(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()}, 0))

	require.NoError(t, Down(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()}, 2))
	assert.Equal(t, []int{-2}, m.steps)
}

func TestVersion(t *testing.T) {
	stubFactories(t, &fakeMigrator{version: 1}, nil)

	version, dirty, ok, err := Version(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dirty)
	assert.Equal(t, uint(1), version)
}

func TestVersion_NothingApplied(t *testing.T) {
	stubFactories(t, &fakeMigrator{verErr: migrate.ErrNilVersion}, nil)

	_, _, ok, err := Version(context.Background(), &sql.DB{}, Config{Dir: t.TempDir()})
	require.NoError(t, err)
	assert.False(t, ok)
}
