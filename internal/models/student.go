package models

import "time"

// Student represents a learner who can be assigned tutoring sessions.
//
// IsBanned together with BanEndDate forms a time-bounded exclusion window.
// The flag is never cleared by a timer; expiry is evaluated lazily at read
// time, so always go through scheduling.IsBanned instead of reading the
// field directly.
type Student struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Class         string     `json:"class"`
	StudentNumber string     `json:"student_number"`
	IsBanned      bool       `json:"is_banned"`
	BanEndDate    *time.Time `json:"ban_end_date,omitempty"`
	TotalSessions int        `json:"total_sessions"`
}

// StudentFilter captures filtering options for listing students.
type StudentFilter struct {
	Search string
	Class  string
}
