package service

import (
	"time"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
)

// fakeStore is a synchronous StateStore stand-in: mutations apply in place and
// the changed keys are recorded instead of queued.
type fakeStore struct {
	st        repository.State
	persisted []string
}

func (f *fakeStore) View() repository.State       { return f.st }
func (f *fakeStore) Sessions() []models.Session   { return f.st.Sessions }
func (f *fakeStore) Teachers() []models.Teacher   { return f.st.Teachers }
func (f *fakeStore) Students() []models.Student   { return f.st.Students }
func (f *fakeStore) TimeSlots() []models.TimeSlot { return f.st.TimeSlots }

func (f *fakeStore) Update(fn func(st *repository.State) ([]string, error)) error {
	changed, err := fn(&f.st)
	if err != nil {
		return err
	}
	f.persisted = append(f.persisted, changed...)
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixtureState() repository.State {
	return repository.State{
		Teachers: []models.Teacher{
			{
				ID:      "t-ahmet",
				Name:    "Ahmet Hoca",
				Subject: "Matematik",
				AvailableHours: models.AvailableHours{
					"Pazartesi": {"09:30-10:10", "10:20-11:00"},
					"Salı":      {"09:30-10:10"},
				},
			},
			{
				ID:      "t-ayse",
				Name:    "Ayşe Öğretmen",
				Subject: "Fizik",
				AvailableHours: models.AvailableHours{
					"Pazartesi": {"09:30-10:10"},
				},
			},
		},
		Students: []models.Student{
			{ID: "s-ali", Name: "Ali Veli", Class: "9-A", StudentNumber: "101"},
			{ID: "s-fatma", Name: "Fatma Yılmaz", Class: "10-B", StudentNumber: "202"},
		},
		TimeSlots: models.DefaultTimeSlots(),
	}
}
