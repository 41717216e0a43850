package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okulapps/etut-api/internal/models"
)

// Reason identifies why an assignment was rejected.
type Reason string

const (
	ReasonNotFound            Reason = "NOT_FOUND"
	ReasonStudentBanned       Reason = "STUDENT_BANNED"
	ReasonWeeklyLimitExceeded Reason = "WEEKLY_LIMIT_EXCEEDED"
	ReasonTeacherUnavailable  Reason = "TEACHER_UNAVAILABLE"
	ReasonTeacherDoubleBooked Reason = "TEACHER_DOUBLE_BOOKED"
	ReasonStudentDoubleBooked Reason = "STUDENT_DOUBLE_BOOKED"
)

// Assignment is a proposed (teacher, student, slot, date) tuple. The subject
// is not part of the proposal: a teacher can only be booked for their own
// subject, so it is always derived from the teacher record.
type Assignment struct {
	TeacherID string
	StudentID string
	TimeSlot  string
	Date      time.Time
}

// Decision is the validator outcome. Rejections are ordinary values carrying
// a reason and display context, never errors: the caller surfaces the message
// and takes no further action.
type Decision struct {
	Valid      bool            `json:"valid"`
	Reason     Reason          `json:"reason,omitempty"`
	Message    string          `json:"message,omitempty"`
	Conflict   *models.Session `json:"conflict,omitempty"`
	BanEndDate *time.Time      `json:"ban_end_date,omitempty"`
}

func reject(reason Reason, message string) Decision {
	return Decision{Reason: reason, Message: message}
}

// ValidateAssignment runs the ordered guard chain over the current snapshots.
// The first failing guard wins; no further guards are evaluated and no state
// is touched.
func ValidateAssignment(a Assignment, teachers []models.Teacher, students []models.Student, sessions []models.Session, now time.Time) Decision {
	teacher := FindTeacher(teachers, a.TeacherID)
	student := FindStudent(students, a.StudentID)
	if teacher == nil || student == nil {
		return reject(ReasonNotFound, "teacher or student not found")
	}

	if IsBanned(*student, now) {
		d := reject(ReasonStudentBanned, fmt.Sprintf("%s is banned from scheduling until %s",
			student.Name, student.BanEndDate.Format("02.01.2006")))
		d.BanEndDate = student.BanEndDate
		return d
	}

	if conflict := FindWeeklySubjectConflict(student.ID, teacher.Subject, a.Date, sessions); conflict != nil {
		d := reject(ReasonWeeklyLimitExceeded, fmt.Sprintf("%s already has a %s session this week (%s %s)",
			student.Name, teacher.Subject, conflict.Date.Format("02.01.2006"), conflict.TimeSlot))
		d.Conflict = conflict
		return d
	}

	dayName := WeekdayName(a.Date)
	if !IsTeacherAvailableOnDay(*teacher, dayName, a.TimeSlot) {
		return reject(ReasonTeacherUnavailable, fmt.Sprintf("%s is not available on %s at %s",
			teacher.Name, dayName, a.TimeSlot))
	}

	if !TeacherFree(teacher.ID, a.TimeSlot, a.Date, sessions) {
		return reject(ReasonTeacherDoubleBooked, fmt.Sprintf("%s already gives a session at %s on this day",
			teacher.Name, a.TimeSlot))
	}

	if !StudentFree(student.ID, a.TimeSlot, a.Date, sessions) {
		return reject(ReasonStudentDoubleBooked, fmt.Sprintf("%s already receives a session at %s on this day",
			student.Name, a.TimeSlot))
	}

	return Decision{Valid: true}
}

// NewSession constructs the session for an accepted assignment. The subject
// is copied from the teacher and the week key is fixed at creation time.
func NewSession(a Assignment, teacher models.Teacher, notes string, now time.Time) models.Session {
	return models.Session{
		ID:        uuid.NewString(),
		TeacherID: a.TeacherID,
		StudentID: a.StudentID,
		Date:      a.Date,
		TimeSlot:  a.TimeSlot,
		Subject:   teacher.Subject,
		WeekYear:  WeekYear(a.Date),
		Status:    models.SessionScheduled,
		CreatedAt: now,
		Notes:     notes,
	}
}

// FindTeacher returns the teacher with the given id, or nil.
func FindTeacher(teachers []models.Teacher, id string) *models.Teacher {
	for i := range teachers {
		if teachers[i].ID == id {
			return &teachers[i]
		}
	}
	return nil
}

// FindStudent returns the student with the given id, or nil.
func FindStudent(students []models.Student, id string) *models.Student {
	for i := range students {
		if students[i].ID == id {
			return &students[i]
		}
	}
	return nil
}

// FindSession returns the session with the given id, or nil.
func FindSession(sessions []models.Session, id string) *models.Session {
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i]
		}
	}
	return nil
}
