package scheduling

import (
	"time"

	"github.com/okulapps/etut-api/internal/models"
)

// BanDuration is the fixed exclusion window applied when a student misses a
// session. One absence in any subject bans the student from all scheduling.
const BanDuration = 14 * 24 * time.Hour

// IsBanned evaluates the student's exclusion window lazily: the flag alone is
// not enough, the window must still be open. An elapsed window means the
// student is treated as unbanned without any stored state change.
func IsBanned(student models.Student, now time.Time) bool {
	return student.IsBanned && student.BanEndDate != nil && now.Before(*student.BanEndDate)
}

// Ban returns a copy of the student excluded from all scheduling until
// now + BanDuration.
func Ban(student models.Student, now time.Time) models.Student {
	end := now.Add(BanDuration)
	student.IsBanned = true
	student.BanEndDate = &end
	return student
}

// Unban clears the exclusion window explicitly (administrative override; the
// normal path is lazy expiry).
func Unban(student models.Student) models.Student {
	student.IsBanned = false
	student.BanEndDate = nil
	return student
}
