package models

// AvailableHours maps a weekday name (Pazartesi..Pazar) to the time-slot
// strings the teacher has declared open for tutoring.
type AvailableHours map[string][]string

// Teacher represents an instructor offering tutoring sessions in exactly one
// subject. TotalSessions is a cached display counter; the authoritative count
// is derived from the session log.
type Teacher struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Subject        string         `json:"subject"`
	Email          string         `json:"email"`
	AvailableHours AvailableHours `json:"available_hours"`
	TotalSessions  int            `json:"total_sessions"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search  string
	Subject string
}
