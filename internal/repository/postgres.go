// Package repository содержит защищённое хранилище учётных данных сессий.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Ключи учётных данных сессии.
const (
	KeyToken        = "Token"
	KeyContentType  = "contentType"
	KeyResponseType = "responseType"
)

// ErrCredentialNotFound возвращается, если ключ сессии не найден.
var ErrCredentialNotFound = errors.New("credential not found")

// PostgresRepository хранит учётные данные сессий в PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	delays []time.Duration
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{
		pool:   pool,
		delays: []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second},
	}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

// withRetry повторяет операцию при временных ошибках БД.
func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for i := 0; i <= len(r.delays); i++ {
		err = fn()
		if err == nil || !isRetryable(err) || i == len(r.delays) {
			return err
		}

		timer := time.NewTimer(r.delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}

	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// Get возвращает значение ключа сессии и отмечает сессию активной.
func (r *PostgresRepository) Get(ctx context.Context, sessionID, key string) (string, error) {
	var value string
	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE session_credentials SET updated_at = now()
			 WHERE session_id = $1 AND key = $2
			 RETURNING value`,
			sessionID, key,
		).Scan(&value)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrCredentialNotFound
		}
		return "", fmt.Errorf("get credential: %w", err)
	}
	return value, nil
}

// Set сохраняет значение ключа сессии.
func (r *PostgresRepository) Set(ctx context.Context, sessionID, key, value string) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO session_credentials (session_id, key, value) VALUES ($1, $2, $3)
			 ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
			sessionID, key, value,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

// Remove удаляет ключ сессии. Отсутствие ключа не считается ошибкой.
func (r *PostgresRepository) Remove(ctx context.Context, sessionID, key string) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM session_credentials WHERE session_id = $1 AND key = $2`,
			sessionID, key,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}

// RemoveSession удаляет все ключи сессии.
func (r *PostgresRepository) RemoveSession(ctx context.Context, sessionID string) error {
	err := r.withRetry(ctx, func() error {
		_, err := r.pool.Exec(ctx, `DELETE FROM session_credentials WHERE session_id = $1`, sessionID)
		return err
	})
	if err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// PurgeIdle удаляет сессии, к которым не обращались дольше maxIdle, и возвращает их идентификаторы.
func (r *PostgresRepository) PurgeIdle(ctx context.Context, maxIdle time.Duration) ([]string, error) {
	var removed []string
	err := r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx,
			`DELETE FROM session_credentials WHERE session_id IN (
				SELECT session_id FROM session_credentials
				GROUP BY session_id
				HAVING max(updated_at) < $1
			)
			RETURNING session_id`,
			time.Now().Add(-maxIdle),
		)
		if err != nil {
			return err
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}
		slices.Sort(ids)
		removed = slices.Compact(ids)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("purge idle sessions: %w", err)
	}
	return removed, nil
}
