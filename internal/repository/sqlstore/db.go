package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/XSAM/otelsql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	_ "modernc.org/sqlite"

	"github.com/jwalitptl/patient-registry/internal/config"
	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
	"github.com/jwalitptl/patient-registry/pkg/metrics"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ExecResult is the outcome of a mutating statement.
type ExecResult struct {
	InsertedID   int64
	RowsAffected int64
}

// DB owns the process-wide store connection. It is built once by the entry
// point and passed to the record stores.
type DB struct {
	x       *sqlx.DB
	driver  string
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// Open connects to the store described by cfg. Any failure to open or reach
// the store is reported as a connection error.
func Open(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger, m *metrics.Metrics) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var (
		dsn   string
		attrs = otelsql.WithAttributes(semconv.DBSystemSqlite)
	)
	switch driver {
	case DriverSQLite:
		if err := ensureDir(cfg.Path); err != nil {
			return nil, apperrors.NewConnection(err)
		}
		dsn = sqliteDSN(cfg.Path)
	case DriverPostgres:
		dsn = cfg.URL
		attrs = otelsql.WithAttributes(semconv.DBSystemPostgreSQL)
	default:
		return nil, apperrors.NewConnection(fmt.Errorf("unsupported database driver %q", driver))
	}

	sqlDB, err := otelsql.Open(driver, dsn, attrs)
	if err != nil {
		return nil, apperrors.NewConnection(fmt.Errorf("failed to open database: %w", err))
	}

	if err := otelsql.RegisterDBStatsMetrics(sqlDB, attrs); err != nil {
		log.Warn().Err(err).Msg("failed to register database stats metrics")
	}

	if driver == DriverSQLite {
		// One connection per process; database/sql serializes callers on it.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	db := &DB{
		x:       sqlx.NewDb(sqlDB, driver),
		driver:  driver,
		log:     log.With().Str("component", "storage").Str("driver", driver).Logger(),
		metrics: m,
	}

	if err := db.Ping(ctx); err != nil {
		sqlDB.Close()
		return nil, apperrors.NewConnection(err)
	}

	db.log.Info().Msg("connected to database")
	return db, nil
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return "file::memory:?_pragma=foreign_keys(1)"
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func ensureDir(path string) error {
	if path == "" || path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

// Driver returns the SQL driver name in use.
func (d *DB) Driver() string {
	return d.driver
}

var errNotConnected = errors.New("database not connected")

func (d *DB) connected() bool {
	return d != nil && d.x != nil
}

// Ping checks that the store is reachable.
func (d *DB) Ping(ctx context.Context) error {
	if !d.connected() {
		return errNotConnected
	}
	return d.x.PingContext(ctx)
}

var schemaStatements = map[string]string{
	DriverSQLite: `
		CREATE TABLE IF NOT EXISTS patients (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			gender TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	DriverPostgres: `
		CREATE TABLE IF NOT EXISTS patients (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			age INTEGER NOT NULL,
			gender TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
}

var indexStatements = []string{
	"CREATE INDEX IF NOT EXISTS idx_patients_email ON patients(email)",
	"CREATE INDEX IF NOT EXISTS idx_patients_phone ON patients(phone)",
	"CREATE INDEX IF NOT EXISTS idx_patients_name ON patients(name)",
}

// BootstrapSchema creates the patients table and its indexes if absent.
// Only the table is required; index failures are logged and skipped.
func (d *DB) BootstrapSchema(ctx context.Context) error {
	if !d.connected() {
		return apperrors.NewConnection(errNotConnected)
	}
	if _, err := d.x.ExecContext(ctx, schemaStatements[d.driver]); err != nil {
		return apperrors.NewStorage("failed to create patients table", err)
	}
	d.log.Info().Msg("patients table ready")

	for _, stmt := range indexStatements {
		if _, err := d.x.ExecContext(ctx, stmt); err != nil {
			d.log.Error().Err(err).Str("statement", stmt).Msg("failed to create index")
		}
	}
	return nil
}

// Execute runs a mutating statement. For INSERTs the new row id is returned;
// PostgreSQL has no LastInsertId so the statement gets a RETURNING clause.
func (d *DB) Execute(ctx context.Context, query string, args ...interface{}) (ExecResult, error) {
	if !d.connected() {
		return ExecResult{}, errNotConnected
	}
	start := time.Now()
	res, err := d.execute(ctx, d.x.Rebind(query), args...)
	d.metrics.ObserveDB(operationName(query), start, err)
	return res, err
}

func (d *DB) execute(ctx context.Context, query string, args ...interface{}) (ExecResult, error) {
	if d.driver == DriverPostgres && isInsert(query) {
		var id int64
		if err := d.x.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return ExecResult{}, err
		}
		return ExecResult{InsertedID: id, RowsAffected: 1}, nil
	}

	res, err := d.x.ExecContext(ctx, query, args...)
	if err != nil {
		return ExecResult{}, err
	}
	out := ExecResult{}
	if out.RowsAffected, err = res.RowsAffected(); err != nil {
		return ExecResult{}, err
	}
	if isInsert(query) {
		if out.InsertedID, err = res.LastInsertId(); err != nil {
			return ExecResult{}, err
		}
	}
	return out, nil
}

// QueryOne scans the first row into dest. found is false when there is no
// row; that is not an error.
func (d *DB) QueryOne(ctx context.Context, dest interface{}, query string, args ...interface{}) (found bool, err error) {
	if !d.connected() {
		return false, errNotConnected
	}
	start := time.Now()
	err = d.x.GetContext(ctx, dest, d.x.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		d.metrics.ObserveDB(operationName(query), start, nil)
		return false, nil
	}
	d.metrics.ObserveDB(operationName(query), start, err)
	if err != nil {
		return false, err
	}
	return true, nil
}

// QueryAll scans every row into dest, which must be a pointer to a slice.
func (d *DB) QueryAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if !d.connected() {
		return errNotConnected
	}
	start := time.Now()
	err := d.x.SelectContext(ctx, dest, d.x.Rebind(query), args...)
	d.metrics.ObserveDB(operationName(query), start, err)
	return err
}

// Close releases the connection. Safe on a nil or never-opened handle.
func (d *DB) Close() error {
	if !d.connected() {
		return nil
	}
	err := d.x.Close()
	d.x = nil
	if err != nil {
		d.log.Error().Err(err).Msg("failed to close database")
		return err
	}
	d.log.Info().Msg("disconnected from database")
	return nil
}

func isInsert(query string) bool {
	return strings.EqualFold(firstWord(query), "insert")
}

func operationName(query string) string {
	return strings.ToLower(firstWord(query))
}

func firstWord(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
