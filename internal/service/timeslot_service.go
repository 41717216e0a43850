package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

const clockLayout = "15:04"

// CreateTimeSlotRequest adds a bookable window to the grid.
type CreateTimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// UpdateTimeSlotRequest rewrites a slot's window or toggles it.
type UpdateTimeSlotRequest struct {
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsActive  *bool  `json:"is_active"`
}

// TimeSlotService manages the daily slot grid. Slot strings are the shared
// vocabulary between teacher availability and sessions. Registry changes only
// move strings in and out of the bookable vocabulary; teacher declarations
// and sessions keep their strings, so a deactivated slot comes back with the
// declarations intact.
type TimeSlotService struct {
	store     stateStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(store stateStore, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{store: store, validator: validate, logger: logger}
}

// List returns the grid ordered by start time.
func (s *TimeSlotService) List(ctx context.Context) ([]models.TimeSlot, error) {
	slots := s.store.TimeSlots()
	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

// ActiveSlotStrings returns the "HH:MM-HH:MM" strings currently bookable,
// ordered by start time.
func (s *TimeSlotService) ActiveSlotStrings(ctx context.Context) ([]string, error) {
	slots, _ := s.List(ctx)
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot.IsActive {
			out = append(out, slot.String())
		}
	}
	return out, nil
}

// Create adds a new active slot. Overlapping windows are allowed; the grid is
// a vocabulary, not a partition of the day.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	slot := models.TimeSlot{
		ID:        uuid.NewString(),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		IsActive:  true,
	}

	err := s.store.Update(func(st *repository.State) ([]string, error) {
		for _, existing := range st.TimeSlots {
			if existing.String() == slot.String() {
				return nil, appErrors.Clone(appErrors.ErrConflict, "time slot already exists")
			}
		}
		st.TimeSlots = append(st.TimeSlots, slot)
		return []string{repository.KeyTimeSlots}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("time slot added", zap.String("slot", slot.String()))
	return &slot, nil
}

// Update rewrites a slot's window or active flag. Teacher declarations are
// not rewritten; a renamed window simply leaves the old string outside the
// bookable vocabulary.
func (s *TimeSlotService) Update(ctx context.Context, id string, req UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	var updated models.TimeSlot
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		slot := findSlot(st.TimeSlots, id)
		if slot == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		slot.StartTime = req.StartTime
		slot.EndTime = req.EndTime
		if req.IsActive != nil {
			slot.IsActive = *req.IsActive
		}
		updated = *slot
		return []string{repository.KeyTimeSlots}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Toggle flips a slot's active flag. It affects new scheduling only:
// declarations and existing sessions are untouched either way.
func (s *TimeSlotService) Toggle(ctx context.Context, id string) (*models.TimeSlot, error) {
	var updated models.TimeSlot
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		slot := findSlot(st.TimeSlots, id)
		if slot == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		slot.IsActive = !slot.IsActive
		updated = *slot
		return []string{repository.KeyTimeSlots}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a slot from the grid. Existing sessions and teacher
// declarations keep the retired string; it is simply no longer bookable.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	return s.store.Update(func(st *repository.State) ([]string, error) {
		for i := range st.TimeSlots {
			if st.TimeSlots[i].ID == id {
				st.TimeSlots = append(st.TimeSlots[:i], st.TimeSlots[i+1:]...)
				return []string{repository.KeyTimeSlots}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
	})
}

func findSlot(slots []models.TimeSlot, id string) *models.TimeSlot {
	for i := range slots {
		if slots[i].ID == id {
			return &slots[i]
		}
	}
	return nil
}

func validateWindow(start, end string) error {
	startAt, err := parseClock(start)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
	}
	endAt, err := parseClock(end)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
	}
	if !endAt.After(startAt) {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	return nil
}

// parseClock accepts zero-padded HH:MM only. time.Parse alone would take
// "9:30", which breaks the lexicographic slot ordering and never matches the
// padded strings teachers declare.
func parseClock(value string) (time.Time, error) {
	at, err := time.Parse(clockLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	if at.Format(clockLayout) != value {
		return time.Time{}, fmt.Errorf("clock value %q is not zero-padded", value)
	}
	return at, nil
}
