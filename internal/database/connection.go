package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hypernova-labs/catalog-service/internal/config"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNotFound indica que la fila buscada no existe
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indica la violación de una restricción UNIQUE
	ErrDuplicate = errors.New("duplicate key")
)

// pgUniqueViolation es el SQLSTATE de unique_violation
const pgUniqueViolation = "23505"

// Querier es lo común entre *sql.DB y *sql.Tx; los repositorios trabajan sobre él
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB representa la conexión a la base de datos
type DB struct {
	*sql.DB
	logger *logrus.Logger
}

// Connect establece la conexión a PostgreSQL y la verifica con reintentos
func Connect(cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := Open(cfg.GetDSN(), logger)
	if err != nil {
		return nil, err
	}

	// Configurar pool de conexiones
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.waitReady(cfg.Database.ConnectRetries, cfg.Database.RetryDelay); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Open abre el pool sin verificarlo
func Open(dsn string, logger *logrus.Logger) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return &DB{DB: db, logger: logger}, nil
}

// waitReady reintenta el health check antes de rendirse
func (db *DB) waitReady(retries int, delay time.Duration) error {
	if retries < 1 {
		retries = 1
	}

	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = db.HealthCheck(ctx)
		cancel()
		if err == nil {
			db.logger.Info("Database connection established")
			return nil
		}

		if attempt < retries {
			db.logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"retries": retries,
				"delay":   delay.String(),
			}).Warn("Database connection failed, retrying")
			time.Sleep(delay)
		}
	}

	return fmt.Errorf("database unreachable after %d attempts: %w", retries, err)
}

// Close cierra la conexión a la base de datos
func (db *DB) Close() error {
	return db.DB.Close()
}

// HealthCheck verifica la salud de la base de datos
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database query test failed: %w", err)
	}

	return nil
}

// GetStats retorna estadísticas del pool
func (db *DB) GetStats() map[string]interface{} {
	s := db.Stats()
	return map[string]interface{}{
		"max_open_connections": s.MaxOpenConnections,
		"open_connections":     s.OpenConnections,
		"in_use":               s.InUse,
		"idle":                 s.Idle,
		"wait_count":           s.WaitCount,
		"wait_duration":        s.WaitDuration.String(),
		"max_idle_closed":      s.MaxIdleClosed,
		"max_lifetime_closed":  s.MaxLifetimeClosed,
	}
}

// WithTransaction ejecuta fn dentro de una transacción: commit si fn termina sin error,
// rollback si retorna error o entra en pánico.
func (db *DB) WithTransaction(ctx context.Context, fn func(q Querier) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("error rolling back transaction: %w, original error: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// LogStats registra las estadísticas de la base de datos
func (db *DB) LogStats() {
	db.logger.WithFields(logrus.Fields(db.GetStats())).Info("Database pool statistics")
}

// Now devuelve la hora actual con la precisión de microsegundos de TIMESTAMPTZ
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// translateError convierte errores del driver en los sentinelas del paquete
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pqErr.Constraint)
	}
	return err
}
