package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/repository"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

func TestTimeSlotServiceCreate(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTimeSlotService(store, nil, nil)

	slot, err := svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "20:10", EndTime: "20:50"})
	require.NoError(t, err)
	assert.True(t, slot.IsActive)
	assert.Equal(t, "20:10-20:50", slot.String())

	// Duplicate window.
	_, err = svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "20:10", EndTime: "20:50"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// Overlap with an existing slot is fine.
	_, err = svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "20:00", EndTime: "20:30"})
	assert.NoError(t, err)
}

func TestTimeSlotServiceCreateRejectsBadWindow(t *testing.T) {
	svc := NewTimeSlotService(&fakeStore{st: fixtureState()}, nil, nil)

	_, err := svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "9:3x", EndTime: "10:10"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "10:10", EndTime: "09:30"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	// "9:30" parses as a clock value but is not the padded vocabulary form.
	_, err = svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "9:30", EndTime: "10:10"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), CreateTimeSlotRequest{StartTime: "09:30", EndTime: "9:55"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimeSlotServiceToggleKeepsDeclarations(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTimeSlotService(store, nil, nil)

	// Slot "1" is 09:30-10:10, declared by both fixture teachers.
	updated, err := svc.Toggle(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	strings, err := svc.ActiveSlotStrings(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, strings, "09:30-10:10")

	// Visibility only: declarations survive the off phase.
	assert.Contains(t, store.st.Teachers[0].AvailableHours["Pazartesi"], "09:30-10:10")
	assert.NotContains(t, store.persisted, repository.KeyTeachers)

	// Reactivating restores the slot with the declarations intact.
	updated, err = svc.Toggle(context.Background(), "1")
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
	assert.Contains(t, store.st.Teachers[0].AvailableHours["Pazartesi"], "09:30-10:10")
	assert.Contains(t, store.st.Teachers[1].AvailableHours["Pazartesi"], "09:30-10:10")
}

func TestTimeSlotServiceUpdateRenamesWindow(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTimeSlotService(store, nil, nil)

	updated, err := svc.Update(context.Background(), "1", UpdateTimeSlotRequest{StartTime: "09:00", EndTime: "09:40"})
	require.NoError(t, err)
	assert.Equal(t, "09:00-09:40", updated.String())

	// Declarations are not rewritten: the old string stays declared (though
	// no longer bookable) and the new one is opt-in.
	assert.Contains(t, store.st.Teachers[0].AvailableHours["Pazartesi"], "09:30-10:10")
	assert.NotContains(t, store.st.Teachers[0].AvailableHours["Pazartesi"], "09:00-09:40")
}

func TestTimeSlotServiceDelete(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTimeSlotService(store, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), "1"))
	assert.Len(t, store.st.TimeSlots, 12)
	// The retired string stays in teacher declarations untouched.
	assert.Contains(t, store.st.Teachers[0].AvailableHours["Pazartesi"], "09:30-10:10")

	err := svc.Delete(context.Background(), "1")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTimeSlotServiceActiveSlotStrings(t *testing.T) {
	store := &fakeStore{st: fixtureState()}
	svc := NewTimeSlotService(store, nil, nil)

	_, err := svc.Toggle(context.Background(), "2")
	require.NoError(t, err)

	strings, err := svc.ActiveSlotStrings(context.Background())
	require.NoError(t, err)
	assert.Len(t, strings, 12)
	assert.NotContains(t, strings, "10:20-11:00")
	assert.Equal(t, "09:30-10:10", strings[0], "ordered by start time")
}
