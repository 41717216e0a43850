package scheduling

import "github.com/okulapps/etut-api/internal/models"

// IsTeacherAvailableOnDay reports whether the teacher has declared the given
// time slot open on the named weekday. Pure membership lookup: a missing day
// key means unavailable.
func IsTeacherAvailableOnDay(teacher models.Teacher, dayName, timeSlot string) bool {
	daySlots, ok := teacher.AvailableHours[dayName]
	if !ok {
		return false
	}
	for _, slot := range daySlots {
		if slot == timeSlot {
			return true
		}
	}
	return false
}
