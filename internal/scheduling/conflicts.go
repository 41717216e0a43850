package scheduling

import (
	"time"

	"github.com/okulapps/etut-api/internal/models"
)

// TeacherFree reports whether the teacher has no session at the slot on the
// given calendar day.
func TeacherFree(teacherID, timeSlot string, date time.Time, sessions []models.Session) bool {
	for _, s := range sessions {
		if s.TeacherID == teacherID && s.TimeSlot == timeSlot && SameDay(s.Date, date) {
			return false
		}
	}
	return true
}

// StudentFree reports whether the student has no session at the slot on the
// given calendar day.
func StudentFree(studentID, timeSlot string, date time.Time, sessions []models.Session) bool {
	for _, s := range sessions {
		if s.StudentID == studentID && s.TimeSlot == timeSlot && SameDay(s.Date, date) {
			return false
		}
	}
	return true
}

// FindWeeklySubjectConflict returns the existing session that blocks the
// weekly per-subject rule: one session per student, subject and week,
// regardless of teacher. The lookup compares against the stored WeekYear key,
// never a recomputed one. Returns nil when the week is free.
func FindWeeklySubjectConflict(studentID, subject string, date time.Time, sessions []models.Session) *models.Session {
	weekYear := WeekYear(date)
	for i := range sessions {
		s := sessions[i]
		if s.StudentID == studentID && s.Subject == subject && s.WeekYear == weekYear {
			return &s
		}
	}
	return nil
}

// WeeklySubjectFree reports whether the weekly per-subject rule holds.
func WeeklySubjectFree(studentID, subject string, date time.Time, sessions []models.Session) bool {
	return FindWeeklySubjectConflict(studentID, subject, date, sessions) == nil
}
