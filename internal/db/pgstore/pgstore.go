// Package pgstore keeps attendance sessions in Postgres through a pgx pool.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS attendance_sessions (
	id               TEXT PRIMARY KEY,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	user_id          TEXT NOT NULL,
	date             TEXT NOT NULL,
	check_in_time    TIMESTAMPTZ NOT NULL,
	check_out_time   TIMESTAMPTZ,
	duration_minutes INTEGER CHECK (duration_minutes >= 0),
	check_in_photo   TEXT NOT NULL DEFAULT '',
	check_out_photo  TEXT NOT NULL DEFAULT '',
	CHECK (check_out_time IS NULL OR check_out_time > check_in_time)
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON attendance_sessions (user_id, date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_sessions_one_open ON attendance_sessions (user_id) WHERE check_out_time IS NULL;
`

const selectColumns = `id, created_at, updated_at, user_id, date, check_in_time,
	check_out_time, duration_minutes, check_in_photo, check_out_photo`

// NewPool builds a connection pool for databaseURL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database url: %w", err)
	}

	poolCfg.MaxConns = 4
	poolCfg.MinConns = 0
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the sessions table and its indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrating postgres schema: %w", err)
	}
	return nil
}

// Store implements attendance.Store on Postgres.
type Store struct {
	pool *pgxpool.Pool
}

var _ attendance.Store = (*Store)(nil)

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Insert(ctx context.Context, open attendance.OpenSession) error {
	const query = `
		INSERT INTO attendance_sessions (id, user_id, date, check_in_time, check_in_photo)
		VALUES ($1, $2, $3, $4, $5)
	`
	row := models.FromOpen(open)
	_, err := s.pool.Exec(ctx, query, row.ID, row.UserID, row.Date, row.CheckInTime, row.CheckInPhoto)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session already open for %s: %w", open.UserID, attendance.ErrConflict)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context, closed attendance.ClosedSession) error {
	const query = `
		UPDATE attendance_sessions
		SET check_out_time = $2, duration_minutes = $3, check_out_photo = $4, updated_at = now()
		WHERE id = $1 AND check_out_time IS NULL
	`
	tag, err := s.pool.Exec(ctx, query, closed.ID, closed.CheckOutTime.UTC(), closed.DurationMinutes, closed.CheckOutPhoto)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s is not open: %w", closed.ID, attendance.ErrConflict)
	}
	return nil
}

func (s *Store) FindOpen(ctx context.Context, userID string) (attendance.OpenSession, bool, error) {
	query := `SELECT ` + selectColumns + `
		FROM attendance_sessions
		WHERE user_id = $1 AND check_out_time IS NULL
		ORDER BY check_in_time DESC
		LIMIT 1`

	row, err := scanSession(s.pool.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.OpenSession{}, false, nil
	}
	if err != nil {
		return attendance.OpenSession{}, false, fmt.Errorf("finding open session: %w", err)
	}

	open, ok := row.ToAttendance().(attendance.OpenSession)
	return open, ok, nil
}

func (s *Store) ListDay(ctx context.Context, userID, date string) ([]attendance.Session, error) {
	return s.ListRange(ctx, userID, date, date)
}

func (s *Store) ListRange(ctx context.Context, userID, from, to string) ([]attendance.Session, error) {
	query := `SELECT ` + selectColumns + `
		FROM attendance_sessions
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY check_in_time ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		row, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		sessions = append(sessions, row.ToAttendance())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (models.Session, error) {
	var s models.Session
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.UserID, &s.Date, &s.CheckInTime,
		&s.CheckOutTime, &s.DurationMinutes, &s.CheckInPhoto, &s.CheckOutPhoto,
	)
	return s, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
