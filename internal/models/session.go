package models

import "time"

// SessionStatus tracks the lifecycle of a tutoring session.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionCompleted SessionStatus = "completed"
	SessionAbsent    SessionStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionCompleted, SessionAbsent:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further status transition is allowed.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionAbsent
}

// Session is one committed tutoring appointment. Teacher and student are
// referenced by id only. WeekYear is computed once at creation from Date and
// never recomputed afterwards; it keys the weekly per-subject fairness rule.
type Session struct {
	ID        string        `json:"id"`
	TeacherID string        `json:"teacher_id"`
	StudentID string        `json:"student_id"`
	Date      time.Time     `json:"date"`
	TimeSlot  string        `json:"time_slot"`
	Subject   string        `json:"subject"`
	WeekYear  string        `json:"week_year"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Notes     string        `json:"notes,omitempty"`
}

// SessionFilter scopes session listing.
type SessionFilter struct {
	TeacherID string
	StudentID string
	WeekYear  string
	Status    *SessionStatus
}
