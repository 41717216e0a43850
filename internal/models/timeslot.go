package models

import "fmt"

// TimeSlot is one bookable window in the daily grid. Sessions reference the
// slot by its "HH:MM-HH:MM" string, not by id, so deleting a slot never
// touches existing sessions.
type TimeSlot struct {
	ID        string `json:"id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

// String returns the "HH:MM-HH:MM" form used as the scheduling vocabulary.
func (s TimeSlot) String() string {
	return fmt.Sprintf("%s-%s", s.StartTime, s.EndTime)
}

// DefaultTimeSlots is the grid seeded on first run, matching the school's
// standard 40-minute study periods.
func DefaultTimeSlots() []TimeSlot {
	windows := [][2]string{
		{"09:30", "10:10"},
		{"10:20", "11:00"},
		{"11:10", "11:50"},
		{"12:00", "12:40"},
		{"12:50", "13:30"},
		{"13:40", "14:20"},
		{"14:30", "15:10"},
		{"15:20", "16:00"},
		{"16:10", "16:50"},
		{"17:00", "17:40"},
		{"17:50", "18:30"},
		{"18:40", "19:20"},
		{"19:30", "20:00"},
	}
	slots := make([]TimeSlot, 0, len(windows))
	for i, w := range windows {
		slots = append(slots, TimeSlot{
			ID:        fmt.Sprintf("%d", i+1),
			StartTime: w[0],
			EndTime:   w[1],
			IsActive:  true,
		})
	}
	return slots
}
