package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/models"
)

// SessionStore keeps attendance sessions in a gorm database
type SessionStore struct {
	db *gorm.DB
}

var _ attendance.Store = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore over db
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

// Insert writes a new open session
func (s *SessionStore) Insert(ctx context.Context, open attendance.OpenSession) error {
	row := models.FromOpen(open)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("session already open for %s: %w", open.UserID, attendance.ErrConflict)
		}
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// Close writes the check-out fields if the session is still open
func (s *SessionStore) Close(ctx context.Context, closed attendance.ClosedSession) error {
	checkOut := closed.CheckOutTime.UTC()
	minutes := closed.DurationMinutes

	result := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ? AND check_out_time IS NULL", closed.ID).
		Updates(map[string]any{
			"check_out_time":   checkOut,
			"duration_minutes": minutes,
			"check_out_photo":  closed.CheckOutPhoto,
		})
	if result.Error != nil {
		return fmt.Errorf("closing session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Closed by another client, or never existed
		return fmt.Errorf("session %s is not open: %w", closed.ID, attendance.ErrConflict)
	}
	return nil
}

// FindOpen returns the user's open session, if any
func (s *SessionStore) FindOpen(ctx context.Context, userID string) (attendance.OpenSession, bool, error) {
	var rows []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND check_out_time IS NULL", userID).
		Order("check_in_time DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return attendance.OpenSession{}, false, fmt.Errorf("finding open session: %w", err)
	}
	if len(rows) == 0 {
		return attendance.OpenSession{}, false, nil // No active session is not an error
	}

	open, ok := rows[0].ToAttendance().(attendance.OpenSession)
	return open, ok, nil
}

// ListDay returns the user's sessions on date ordered by check-in time
func (s *SessionStore) ListDay(ctx context.Context, userID, date string) ([]attendance.Session, error) {
	return s.ListRange(ctx, userID, date, date)
}

// ListRange returns the user's sessions with from <= date <= to
func (s *SessionStore) ListRange(ctx context.Context, userID, from, to string) ([]attendance.Session, error) {
	var rows []models.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("check_in_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	sessions := make([]attendance.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.ToAttendance())
	}
	return sessions, nil
}

// isUniqueViolation matches both the translated gorm error and the raw
// SQLite message, depending on driver version
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
