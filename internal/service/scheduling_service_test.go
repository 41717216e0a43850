package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

func newSchedulingService(store *fakeStore, at time.Time) *SchedulingService {
	svc := NewSchedulingService(store, nil, nil, nil, nil)
	svc.now = func() time.Time { return at }
	return svc
}

func TestSchedulingServiceValidate(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	decision, err := svc.Validate(context.Background(), ValidateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)
	assert.True(t, decision.Valid)
	assert.Empty(t, store.persisted, "dry run must not touch state")
}

func TestSchedulingServiceValidateRejectsBadDate(t *testing.T) {
	svc := newSchedulingService(&fakeStore{st: fixtureState()}, day(2024, time.March, 4))

	_, err := svc.Validate(context.Background(), ValidateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "04.03.2024",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSchedulingServiceCreate(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	session, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04", Notes: "ilk ders",
	})
	require.NoError(t, err)
	assert.Equal(t, "Matematik", session.Subject)
	assert.Equal(t, "2024-W10", session.WeekYear)
	assert.Equal(t, models.SessionScheduled, session.Status)
	require.Len(t, store.st.Sessions, 1)
	assert.Equal(t, []string{repository.KeySessions}, store.persisted)

	// Same proposal again: the weekly guard fires inside the store lock.
	_, err = svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "10:20-11:00", Date: "2024-03-05",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrWeeklyLimitExceeded.Code, appErrors.FromError(err).Code)
	assert.Len(t, store.st.Sessions, 1)
}

func TestSchedulingServiceCreateMapsGuardReasons(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	_, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "missing", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "11:10-11:50", Date: "2024-03-04",
	})
	assert.Equal(t, appErrors.ErrTeacherUnavailable.Code, appErrors.FromError(err).Code)
}

func TestSchedulingServiceComplete(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	created, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)

	updated, err := svc.Complete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionCompleted, updated.Status)

	// Terminal states reject further transitions.
	_, err = svc.Complete(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
	_, err = svc.MarkAbsent(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestSchedulingServiceMarkAbsentBansStudent(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	now := day(2024, time.March, 4)
	svc := newSchedulingService(store, now)

	created, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)

	updated, err := svc.MarkAbsent(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionAbsent, updated.Status)

	student := scheduling.FindStudent(store.st.Students, "s-ali")
	require.NotNil(t, student)
	assert.True(t, scheduling.IsBanned(*student, now))
	require.NotNil(t, student.BanEndDate)
	assert.Equal(t, now.Add(scheduling.BanDuration), *student.BanEndDate)

	// Both collections persisted in one mutation.
	assert.Contains(t, store.persisted, repository.KeyStudents)
}

func TestSchedulingServiceMarkAbsentDanglingStudentLeavesSessionUntouched(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	now := day(2024, time.March, 4)
	svc := newSchedulingService(store, now)

	created, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)

	// The student leaves the roster; their session stays in the log.
	store.st.Students = store.st.Students[1:]

	_, err = svc.MarkAbsent(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	// Neither half of the dual mutation landed.
	session := scheduling.FindSession(store.st.Sessions, created.ID)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionScheduled, session.Status)
}

func TestSchedulingServiceUpdateNotesAndDelete(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	created, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateNotes(context.Background(), created.ID, UpdateNotesRequest{Notes: "konu: türev"})
	require.NoError(t, err)
	assert.Equal(t, "konu: türev", updated.Notes)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	assert.Empty(t, store.st.Sessions)

	err = svc.Delete(context.Background(), created.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSchedulingServiceList(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := newSchedulingService(store, day(2024, time.March, 4))

	_, err := svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), CreateSessionRequest{
		TeacherID: "t-ayse", StudentID: "s-fatma", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), models.SessionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byTeacher, err := svc.List(context.Background(), models.SessionFilter{TeacherID: "t-ahmet"})
	require.NoError(t, err)
	require.Len(t, byTeacher, 1)
	assert.Equal(t, "s-ali", byTeacher[0].StudentID)

	byWeek, err := svc.List(context.Background(), models.SessionFilter{WeekYear: "2024-W10"})
	require.NoError(t, err)
	assert.Len(t, byWeek, 2)

	scheduled := models.SessionScheduled
	byStatus, err := svc.List(context.Background(), models.SessionFilter{Status: &scheduled})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)
}
