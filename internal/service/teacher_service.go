package service

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

// CreateTeacherRequest represents payload for registering teachers.
type CreateTeacherRequest struct {
	Name           string              `json:"name" validate:"required,max=200"`
	Subject        string              `json:"subject" validate:"required,max=100"`
	Email          string              `json:"email" validate:"omitempty,email"`
	AvailableHours map[string][]string `json:"available_hours"`
}

// UpdateTeacherRequest represents payload for updating teachers.
type UpdateTeacherRequest struct {
	Name           string              `json:"name" validate:"required,max=200"`
	Subject        string              `json:"subject" validate:"required,max=100"`
	Email          string              `json:"email" validate:"omitempty,email"`
	AvailableHours map[string][]string `json:"available_hours"`
}

// TeacherService manages the teacher roster and availability declarations.
type TeacherService struct {
	store     stateStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(store stateStore, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{store: store, validator: validate, logger: logger}
}

// List returns teachers matching the filter, sorted by name, with session
// totals recomputed from the log.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	st := s.store.View()
	out := make([]models.Teacher, 0, len(st.Teachers))
	for _, teacher := range st.Teachers {
		if filter.Subject != "" && !strings.EqualFold(teacher.Subject, filter.Subject) {
			continue
		}
		if filter.Search != "" && !containsFold(teacher.Name, filter.Search) {
			continue
		}
		teacher.TotalSessions = countTeacherSessions(st.Sessions, teacher.ID)
		out = append(out, teacher)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a teacher by id with the recomputed session total.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	st := s.store.View()
	teacher := scheduling.FindTeacher(st.Teachers, id)
	if teacher == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	teacher.TotalSessions = countTeacherSessions(st.Sessions, teacher.ID)
	return teacher, nil
}

// Create registers a new teacher.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	hours, err := s.normalizeHours(req.AvailableHours)
	if err != nil {
		return nil, err
	}

	teacher := models.Teacher{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(req.Name),
		Subject:        strings.TrimSpace(req.Subject),
		Email:          strings.TrimSpace(req.Email),
		AvailableHours: hours,
	}

	err = s.store.Update(func(st *repository.State) ([]string, error) {
		st.Teachers = append(st.Teachers, teacher)
		return []string{repository.KeyTeachers}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("teacher registered", zap.String("teacher_id", teacher.ID), zap.String("subject", teacher.Subject))
	return &teacher, nil
}

// Update modifies an existing teacher. Changing the subject does not rewrite
// past sessions; their subject was fixed at creation.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}
	hours, err := s.normalizeHours(req.AvailableHours)
	if err != nil {
		return nil, err
	}

	var updated models.Teacher
	err = s.store.Update(func(st *repository.State) ([]string, error) {
		teacher := scheduling.FindTeacher(st.Teachers, id)
		if teacher == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		teacher.Name = strings.TrimSpace(req.Name)
		teacher.Subject = strings.TrimSpace(req.Subject)
		teacher.Email = strings.TrimSpace(req.Email)
		teacher.AvailableHours = hours
		updated = *teacher
		return []string{repository.KeyTeachers}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a teacher from the roster. The session log is left intact as
// history; dangling teacher ids there only fail future validations.
func (s *TeacherService) Delete(ctx context.Context, id string) error {
	return s.store.Update(func(st *repository.State) ([]string, error) {
		for i := range st.Teachers {
			if st.Teachers[i].ID == id {
				st.Teachers = append(st.Teachers[:i], st.Teachers[i+1:]...)
				return []string{repository.KeyTeachers}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	})
}

// Sessions returns a teacher's session log, oldest first.
func (s *TeacherService) Sessions(ctx context.Context, id string) ([]models.Session, error) {
	st := s.store.View()
	if scheduling.FindTeacher(st.Teachers, id) == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	out := make([]models.Session, 0)
	for _, session := range st.Sessions {
		if session.TeacherID == id {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

// Subjects returns the distinct subjects currently taught, sorted.
func (s *TeacherService) Subjects(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	for _, teacher := range s.store.Teachers() {
		seen[teacher.Subject] = struct{}{}
	}
	subjects := make([]string, 0, len(seen))
	for subject := range seen {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// normalizeHours checks the declared availability against the weekday
// vocabulary and the active slot grid, and fills in missing days with empty
// lists so lookups never hit an absent key.
func (s *TeacherService) normalizeHours(raw map[string][]string) (models.AvailableHours, error) {
	active := map[string]struct{}{}
	for _, slot := range s.store.TimeSlots() {
		if slot.IsActive {
			active[slot.String()] = struct{}{}
		}
	}

	hours := models.AvailableHours{}
	for _, day := range scheduling.WeekDays {
		hours[day] = []string{}
	}
	for day, slots := range raw {
		if _, ok := hours[day]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown weekday "+day)
		}
		for _, slot := range slots {
			if _, ok := active[slot]; !ok {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown or inactive time slot "+slot)
			}
		}
		hours[day] = append([]string{}, slots...)
	}
	return hours, nil
}

func countTeacherSessions(sessions []models.Session, teacherID string) int {
	count := 0
	for _, session := range sessions {
		if session.TeacherID == teacherID {
			count++
		}
	}
	return count
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
