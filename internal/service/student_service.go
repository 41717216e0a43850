package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

// CreateStudentRequest represents payload for registering students.
type CreateStudentRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Class         string `json:"class" validate:"required,max=20"`
	StudentNumber string `json:"student_number" validate:"required,max=20"`
}

// UpdateStudentRequest represents payload for updating students.
type UpdateStudentRequest struct {
	Name          string `json:"name" validate:"required,max=200"`
	Class         string `json:"class" validate:"required,max=20"`
	StudentNumber string `json:"student_number" validate:"required,max=20"`
}

// StudentService manages the student roster and the administrative side of
// the ban window.
type StudentService struct {
	store     stateStore
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(store stateStore, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{store: store, validator: validate, logger: logger, now: time.Now}
}

// List returns students matching the filter, sorted by name. The returned
// IsBanned flag is the effective value after lazy expiry, and session totals
// are recomputed from the log.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	st := s.store.View()
	now := s.now()
	out := make([]models.Student, 0, len(st.Students))
	for _, student := range st.Students {
		if filter.Class != "" && !strings.EqualFold(student.Class, filter.Class) {
			continue
		}
		if filter.Search != "" && !containsFold(student.Name, filter.Search) && !containsFold(student.StudentNumber, filter.Search) {
			continue
		}
		out = append(out, s.present(student, st.Sessions, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	st := s.store.View()
	student := scheduling.FindStudent(st.Students, id)
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	}
	presented := s.present(*student, st.Sessions, s.now())
	return &presented, nil
}

// Banned returns students whose exclusion window is currently open.
func (s *StudentService) Banned(ctx context.Context) ([]models.Student, error) {
	st := s.store.View()
	now := s.now()
	out := make([]models.Student, 0)
	for _, student := range st.Students {
		if scheduling.IsBanned(student, now) {
			out = append(out, s.present(student, st.Sessions, now))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Create registers a new student. Student numbers are unique.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := models.Student{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Class:         strings.TrimSpace(req.Class),
		StudentNumber: strings.TrimSpace(req.StudentNumber),
	}

	err := s.store.Update(func(st *repository.State) ([]string, error) {
		if numberTaken(st.Students, student.StudentNumber, "") {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
		}
		st.Students = append(st.Students, student)
		return []string{repository.KeyStudents}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student registered", zap.String("student_id", student.ID), zap.String("class", student.Class))
	return &student, nil
}

// Update modifies an existing student. Ban state is untouched; it only moves
// through absence marking, expiry or Unban.
func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	var updated models.Student
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		student := scheduling.FindStudent(st.Students, id)
		if student == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		number := strings.TrimSpace(req.StudentNumber)
		if numberTaken(st.Students, number, id) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "student number already used")
		}
		student.Name = strings.TrimSpace(req.Name)
		student.Class = strings.TrimSpace(req.Class)
		student.StudentNumber = number
		updated = *student
		return []string{repository.KeyStudents}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Unban lifts the exclusion window early.
func (s *StudentService) Unban(ctx context.Context, id string) (*models.Student, error) {
	var updated models.Student
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		student := scheduling.FindStudent(st.Students, id)
		if student == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		*student = scheduling.Unban(*student)
		updated = *student
		return []string{repository.KeyStudents}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student unbanned", zap.String("student_id", id))
	return &updated, nil
}

// Delete removes a student from the roster, leaving the session log intact.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	return s.store.Update(func(st *repository.State) ([]string, error) {
		for i := range st.Students {
			if st.Students[i].ID == id {
				st.Students = append(st.Students[:i], st.Students[i+1:]...)
				return []string{repository.KeyStudents}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
	})
}

// present maps a stored student onto its API representation: effective ban
// flag and recomputed session total.
func (s *StudentService) present(student models.Student, sessions []models.Session, now time.Time) models.Student {
	student.IsBanned = scheduling.IsBanned(student, now)
	if !student.IsBanned {
		student.BanEndDate = nil
	}
	count := 0
	for _, session := range sessions {
		if session.StudentID == student.ID {
			count++
		}
	}
	student.TotalSessions = count
	return student
}

func numberTaken(students []models.Student, number, excludeID string) bool {
	for _, student := range students {
		if student.ID != excludeID && student.StudentNumber == number {
			return true
		}
	}
	return false
}
