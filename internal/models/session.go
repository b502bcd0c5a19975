package models

import (
	"time"

	"github.com/balkashynov/punch/internal/attendance"
)

// Session is the stored form of an attendance session
type Session struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID          string     `gorm:"size:128;not null;index:idx_sessions_user_date,priority:1" json:"user_id"`
	Date            string     `gorm:"size:10;not null;index:idx_sessions_user_date,priority:2" json:"date"` // YYYY-MM-DD
	CheckInTime     time.Time  `gorm:"not null" json:"check_in_time"`
	CheckOutTime    *time.Time `json:"check_out_time"`   // nil while open
	DurationMinutes *int       `json:"duration_minutes"` // written once at check-out

	// Opaque encoded captures
	CheckInPhoto  string `json:"check_in_photo,omitempty"`
	CheckOutPhoto string `json:"check_out_photo,omitempty"`
}

// TableName keeps the table name stable across model renames
func (Session) TableName() string {
	return "attendance_sessions"
}

// FromOpen builds a row for a freshly opened session
func FromOpen(s attendance.OpenSession) Session {
	return Session{
		ID:           s.ID,
		UserID:       s.UserID,
		Date:         s.Date,
		CheckInTime:  s.CheckInTime.UTC(),
		CheckInPhoto: s.CheckInPhoto,
	}
}

// ToAttendance converts the row into its typed lifecycle variant
func (s Session) ToAttendance() attendance.Session {
	open := attendance.OpenSession{Base: attendance.Base{
		ID:           s.ID,
		UserID:       s.UserID,
		Date:         s.Date,
		CheckInTime:  s.CheckInTime,
		CheckInPhoto: s.CheckInPhoto,
	}}
	if s.CheckOutTime == nil {
		return open
	}

	closed := open.Close(*s.CheckOutTime, s.CheckOutPhoto)
	if s.DurationMinutes != nil {
		// The stored value wins; it is never recomputed.
		closed.DurationMinutes = *s.DurationMinutes
	}
	return closed
}
