package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

// DateLayout is the wire format for session dates.
const DateLayout = "2006-01-02"

type stateStore interface {
	View() repository.State
	Sessions() []models.Session
	Teachers() []models.Teacher
	Students() []models.Student
	TimeSlots() []models.TimeSlot
	Update(fn func(st *repository.State) ([]string, error)) error
}

// ReportInvalidator drops cached report payloads after a mutation.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}

// ValidateSessionRequest is a dry-run assignment proposal.
type ValidateSessionRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	TimeSlot  string `json:"time_slot" validate:"required"`
	Date      string `json:"date" validate:"required"`
}

// CreateSessionRequest commits an assignment when it validates.
type CreateSessionRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	TimeSlot  string `json:"time_slot" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Notes     string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateNotesRequest replaces the free-text notes on a session.
type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=1000"`
}

// SchedulingService owns the session lifecycle: validation, creation, status
// transitions and the absence ban.
type SchedulingService struct {
	store     stateStore
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	cache     ReportInvalidator
	now       func() time.Time
}

// NewSchedulingService constructs a SchedulingService. metrics and cache may
// be nil.
func NewSchedulingService(store stateStore, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, cache ReportInvalidator) *SchedulingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SchedulingService{
		store:     store,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		cache:     cache,
		now:       time.Now,
	}
}

// Validate runs the guard chain without touching state. The decision is the
// payload, valid or not; only malformed input is an error.
func (s *SchedulingService) Validate(ctx context.Context, req ValidateSessionRequest) (*scheduling.Decision, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	assignment, err := s.parseAssignment(req.TeacherID, req.StudentID, req.TimeSlot, req.Date)
	if err != nil {
		return nil, err
	}

	st := s.store.View()
	decision := scheduling.ValidateAssignment(assignment, st.Teachers, st.Students, st.Sessions, s.now())
	if !decision.Valid {
		s.metrics.RecordRejection(string(decision.Reason))
	}
	return &decision, nil
}

// Create validates the proposal and appends the session. The guard chain runs
// again inside the store lock so a racing request cannot slip past a stale
// snapshot.
func (s *SchedulingService) Create(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	assignment, err := s.parseAssignment(req.TeacherID, req.StudentID, req.TimeSlot, req.Date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var created models.Session
	err = s.store.Update(func(st *repository.State) ([]string, error) {
		decision := scheduling.ValidateAssignment(assignment, st.Teachers, st.Students, st.Sessions, now)
		if !decision.Valid {
			s.metrics.RecordRejection(string(decision.Reason))
			return nil, rejectionError(decision)
		}
		teacher := scheduling.FindTeacher(st.Teachers, assignment.TeacherID)
		created = scheduling.NewSession(assignment, *teacher, req.Notes, now)
		st.Sessions = append(st.Sessions, created)
		return []string{repository.KeySessions}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSessionCreated()
	s.invalidateReports(ctx)
	s.logger.Info("session created",
		zap.String("session_id", created.ID),
		zap.String("teacher_id", created.TeacherID),
		zap.String("student_id", created.StudentID),
		zap.String("week_year", created.WeekYear))
	return &created, nil
}

// Get returns a session by id.
func (s *SchedulingService) Get(ctx context.Context, id string) (*models.Session, error) {
	session := scheduling.FindSession(s.store.Sessions(), id)
	if session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return session, nil
}

// List returns sessions matching the filter, ordered by date then slot.
func (s *SchedulingService) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	sessions := s.store.Sessions()
	out := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if filter.TeacherID != "" && session.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && session.StudentID != filter.StudentID {
			continue
		}
		if filter.WeekYear != "" && session.WeekYear != filter.WeekYear {
			continue
		}
		if filter.Status != nil && session.Status != *filter.Status {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

// Complete marks a scheduled session as held.
func (s *SchedulingService) Complete(ctx context.Context, id string) (*models.Session, error) {
	return s.transition(ctx, id, models.SessionCompleted)
}

// MarkAbsent marks a scheduled session as missed and opens the student's ban
// window. Both changes commit atomically.
func (s *SchedulingService) MarkAbsent(ctx context.Context, id string) (*models.Session, error) {
	now := s.now()
	var updated models.Session
	var bannedUntil time.Time
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		session := scheduling.FindSession(st.Sessions, id)
		if session == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		if session.Status.Terminal() {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "session is already "+string(session.Status))
		}

		// Resolve the student before touching the session: the absence mark
		// and the ban commit together or not at all.
		student := scheduling.FindStudent(st.Students, session.StudentID)
		if student == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}

		session.Status = models.SessionAbsent
		*student = scheduling.Ban(*student, now)
		bannedUntil = *student.BanEndDate

		updated = *session
		return []string{repository.KeySessions, repository.KeyStudents}, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBan()
	s.invalidateReports(ctx)
	s.logger.Info("session marked absent, student banned",
		zap.String("session_id", updated.ID),
		zap.String("student_id", updated.StudentID),
		zap.Time("ban_end_date", bannedUntil))
	return &updated, nil
}

// UpdateNotes replaces the notes on a session. Allowed in any status.
func (s *SchedulingService) UpdateNotes(ctx context.Context, id string, req UpdateNotesRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notes payload")
	}
	var updated models.Session
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		session := scheduling.FindSession(st.Sessions, id)
		if session == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		session.Notes = req.Notes
		updated = *session
		return []string{repository.KeySessions}, nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a session from the log. The guards scan live sessions, so
// deleting frees any conflicts the entry was causing; a ban applied through
// an absence is not reversed.
func (s *SchedulingService) Delete(ctx context.Context, id string) error {
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		for i := range st.Sessions {
			if st.Sessions[i].ID == id {
				st.Sessions = append(st.Sessions[:i], st.Sessions[i+1:]...)
				return []string{repository.KeySessions}, nil
			}
		}
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	})
	if err != nil {
		return err
	}
	s.invalidateReports(ctx)
	return nil
}

func (s *SchedulingService) transition(ctx context.Context, id string, target models.SessionStatus) (*models.Session, error) {
	var updated models.Session
	err := s.store.Update(func(st *repository.State) ([]string, error) {
		session := scheduling.FindSession(st.Sessions, id)
		if session == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		if session.Status.Terminal() {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "session is already "+string(session.Status))
		}
		session.Status = target
		updated = *session
		return []string{repository.KeySessions}, nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidateReports(ctx)
	return &updated, nil
}

func (s *SchedulingService) parseAssignment(teacherID, studentID, slot, rawDate string) (scheduling.Assignment, error) {
	date, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return scheduling.Assignment{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return scheduling.Assignment{
		TeacherID: teacherID,
		StudentID: studentID,
		TimeSlot:  slot,
		Date:      date,
	}, nil
}

func (s *SchedulingService) invalidateReports(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", zap.Error(err))
	}
}

// rejectionError maps a guard decision onto the error taxonomy, keeping the
// human-readable message from the decision.
func rejectionError(d scheduling.Decision) *appErrors.Error {
	var base *appErrors.Error
	switch d.Reason {
	case scheduling.ReasonNotFound:
		base = appErrors.ErrNotFound
	case scheduling.ReasonStudentBanned:
		base = appErrors.ErrStudentBanned
	case scheduling.ReasonWeeklyLimitExceeded:
		base = appErrors.ErrWeeklyLimitExceeded
	case scheduling.ReasonTeacherUnavailable:
		base = appErrors.ErrTeacherUnavailable
	case scheduling.ReasonTeacherDoubleBooked:
		base = appErrors.ErrTeacherDoubleBooked
	case scheduling.ReasonStudentDoubleBooked:
		base = appErrors.ErrStudentDoubleBooked
	default:
		base = appErrors.ErrConflict
	}
	return appErrors.Clone(base, d.Message)
}
