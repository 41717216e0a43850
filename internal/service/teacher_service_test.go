package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/models"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

func TestTeacherServiceCreateNormalizesHours(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTeacherService(store, nil, nil)

	created, err := svc.Create(context.Background(), CreateTeacherRequest{
		Name:    "Mehmet Bey",
		Subject: "Kimya",
		AvailableHours: map[string][]string{
			"Çarşamba": {"09:30-10:10"},
		},
	})
	require.NoError(t, err)

	// Every weekday key exists after normalization.
	require.Len(t, created.AvailableHours, 7)
	assert.Equal(t, []string{"09:30-10:10"}, created.AvailableHours["Çarşamba"])
	assert.Empty(t, created.AvailableHours["Cuma"])
}

func TestTeacherServiceCreateRejectsUnknownDayAndSlot(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTeacherService(store, nil, nil)

	_, err := svc.Create(context.Background(), CreateTeacherRequest{
		Name: "X", Subject: "Kimya",
		AvailableHours: map[string][]string{"Monday": {"09:30-10:10"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateTeacherRequest{
		Name: "X", Subject: "Kimya",
		AvailableHours: map[string][]string{"Pazartesi": {"08:00-08:40"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceListFiltersAndCounts(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	store.st.Sessions = []models.Session{
		{ID: "x1", TeacherID: "t-ahmet", StudentID: "s-ali", Subject: "Matematik", WeekYear: "2024-W10", Status: models.SessionCompleted},
	}
	svc := NewTeacherService(store, nil, nil)

	bySubject, err := svc.List(context.Background(), models.TeacherFilter{Subject: "matematik"})
	require.NoError(t, err)
	require.Len(t, bySubject, 1)
	assert.Equal(t, "t-ahmet", bySubject[0].ID)
	assert.Equal(t, 1, bySubject[0].TotalSessions)

	bySearch, err := svc.List(context.Background(), models.TeacherFilter{Search: "ayşe"})
	require.NoError(t, err)
	require.Len(t, bySearch, 1)
	assert.Equal(t, "t-ayse", bySearch[0].ID)
}

func TestTeacherServiceUpdate(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTeacherService(store, nil, nil)

	updated, err := svc.Update(context.Background(), "t-ahmet", UpdateTeacherRequest{
		Name: "Ahmet Hoca", Subject: "Geometri",
		AvailableHours: map[string][]string{"Salı": {"10:20-11:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Geometri", updated.Subject)
	assert.Equal(t, []string{"10:20-11:00"}, updated.AvailableHours["Salı"])
	assert.Empty(t, updated.AvailableHours["Pazartesi"], "declaration replaced, not merged")

	_, err = svc.Update(context.Background(), "missing", UpdateTeacherRequest{Name: "X", Subject: "Y"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceSessions(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	store.st.Sessions = []models.Session{
		{ID: "x2", TeacherID: "t-ahmet", StudentID: "s-fatma", Date: day(2024, time.March, 11), TimeSlot: "09:30-10:10", Subject: "Matematik", WeekYear: "2024-W11"},
		{ID: "x1", TeacherID: "t-ahmet", StudentID: "s-ali", Date: day(2024, time.March, 4), TimeSlot: "09:30-10:10", Subject: "Matematik", WeekYear: "2024-W10"},
		{ID: "x3", TeacherID: "t-ayse", StudentID: "s-ali", Date: day(2024, time.March, 4), TimeSlot: "09:30-10:10", Subject: "Fizik", WeekYear: "2024-W10"},
	}
	svc := NewTeacherService(store, nil, nil)

	sessions, err := svc.Sessions(context.Background(), "t-ahmet")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "x1", sessions[0].ID, "oldest first")

	_, err = svc.Sessions(context.Background(), "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceSubjects(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTeacherService(store, nil, nil)

	subjects, err := svc.Subjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Fizik", "Matematik"}, subjects)
}

func TestTeacherServiceDeleteKeepsSessions(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	store.st.Sessions = []models.Session{
		{ID: "x1", TeacherID: "t-ahmet", StudentID: "s-ali", Subject: "Matematik", WeekYear: "2024-W10", Status: models.SessionCompleted},
	}
	svc := NewTeacherService(store, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "t-ahmet"))
	assert.Len(t, store.st.Teachers, 1)
	assert.Len(t, store.st.Sessions, 1, "history survives roster removal")
}
