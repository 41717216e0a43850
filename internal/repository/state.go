package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/pkg/jobs"
)

// State is the full in-memory dataset: three flat collections plus the slot
// grid. Mutations always go through StateStore.Update so that multi-collection
// changes (e.g. marking a session absent and banning the student) land
// atomically.
type State struct {
	Sessions  []models.Session
	Teachers  []models.Teacher
	Students  []models.Student
	TimeSlots []models.TimeSlot
}

// StateStore keeps the authoritative dataset in memory and mirrors every
// mutation to the snapshot table through a background queue. Readers get
// copies; a slow disk never blocks a request.
type StateStore struct {
	mu    sync.RWMutex
	state State

	snapshots *SnapshotRepository
	queue     *jobs.Queue
	logger    *zap.Logger
}

// NewStateStore constructs the store and its persistence queue. Call Start
// before use.
func NewStateStore(snapshots *SnapshotRepository, queueCfg jobs.QueueConfig, logger *zap.Logger) *StateStore {
	s := &StateStore{snapshots: snapshots, logger: logger}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("snapshot-persist", s.persist, queueCfg)
	return s
}

// Start loads the snapshots into memory and begins background persistence.
// A missing time-slot snapshot is seeded with the default grid.
func (s *StateStore) Start(ctx context.Context) error {
	s.queue.Start(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.snapshots.Load(ctx, KeySessions, &s.state.Sessions); err != nil {
		return err
	}
	if _, err := s.snapshots.Load(ctx, KeyTeachers, &s.state.Teachers); err != nil {
		return err
	}
	if _, err := s.snapshots.Load(ctx, KeyStudents, &s.state.Students); err != nil {
		return err
	}
	seeded, err := s.snapshots.Load(ctx, KeyTimeSlots, &s.state.TimeSlots)
	if err != nil {
		return err
	}
	if !seeded {
		s.state.TimeSlots = models.DefaultTimeSlots()
		if err := s.snapshots.Save(ctx, KeyTimeSlots, s.state.TimeSlots); err != nil {
			return fmt.Errorf("seed default time slots: %w", err)
		}
		s.logger.Info("seeded default time slot grid", zap.Int("slots", len(s.state.TimeSlots)))
	}

	s.logger.Info("state loaded",
		zap.Int("sessions", len(s.state.Sessions)),
		zap.Int("teachers", len(s.state.Teachers)),
		zap.Int("students", len(s.state.Students)),
		zap.Int("time_slots", len(s.state.TimeSlots)))
	return nil
}

// Stop flushes all collections to disk and stops the queue.
func (s *StateStore) Stop(ctx context.Context) {
	s.queue.Stop()
	if err := s.Flush(ctx); err != nil {
		s.logger.Error("final snapshot flush failed", zap.Error(err))
	}
}

// Flush writes every collection synchronously.
func (s *StateStore) Flush(ctx context.Context) error {
	snapshot := s.View()
	for key, value := range map[string]interface{}{
		KeySessions:  snapshot.Sessions,
		KeyTeachers:  snapshot.Teachers,
		KeyStudents:  snapshot.Students,
		KeyTimeSlots: snapshot.TimeSlots,
	} {
		if err := s.snapshots.Save(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// View returns a copy of the whole dataset.
func (s *StateStore) View() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Sessions:  copySessions(s.state.Sessions),
		Teachers:  copyTeachers(s.state.Teachers),
		Students:  copyStudents(s.state.Students),
		TimeSlots: copyTimeSlots(s.state.TimeSlots),
	}
}

// Sessions returns a copy of the session log.
func (s *StateStore) Sessions() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySessions(s.state.Sessions)
}

// Teachers returns a copy of the teacher roster.
func (s *StateStore) Teachers() []models.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTeachers(s.state.Teachers)
}

// Students returns a copy of the student roster.
func (s *StateStore) Students() []models.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyStudents(s.state.Students)
}

// TimeSlots returns a copy of the slot grid.
func (s *StateStore) TimeSlots() []models.TimeSlot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyTimeSlots(s.state.TimeSlots)
}

// Update applies fn to the live dataset under the write lock. fn returns the
// collection keys it changed; each one is queued for persistence. Returning an
// error rolls nothing back, so fn must validate before mutating.
func (s *StateStore) Update(fn func(st *State) ([]string, error)) error {
	s.mu.Lock()
	changed, err := fn(&s.state)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, key := range changed {
		s.enqueuePersist(key)
	}
	return nil
}

func (s *StateStore) enqueuePersist(key string) {
	err := s.queue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: key})
	if err != nil {
		s.logger.Warn("snapshot persist enqueue failed", zap.String("key", key), zap.Error(err))
	}
}

// persist is the queue handler: it snapshots the named collection under the
// read lock and writes it out.
func (s *StateStore) persist(ctx context.Context, job jobs.Job) error {
	s.mu.RLock()
	var value interface{}
	switch job.Type {
	case KeySessions:
		value = copySessions(s.state.Sessions)
	case KeyTeachers:
		value = copyTeachers(s.state.Teachers)
	case KeyStudents:
		value = copyStudents(s.state.Students)
	case KeyTimeSlots:
		value = copyTimeSlots(s.state.TimeSlots)
	default:
		s.mu.RUnlock()
		return fmt.Errorf("unknown snapshot key %q", job.Type)
	}
	s.mu.RUnlock()
	return s.snapshots.Save(ctx, job.Type, value)
}

func copySessions(in []models.Session) []models.Session {
	out := make([]models.Session, len(in))
	copy(out, in)
	return out
}

// Copies are shallow: writers replace AvailableHours maps wholesale instead of
// mutating them in place.
func copyTeachers(in []models.Teacher) []models.Teacher {
	out := make([]models.Teacher, len(in))
	copy(out, in)
	return out
}

func copyStudents(in []models.Student) []models.Student {
	out := make([]models.Student, len(in))
	copy(out, in)
	return out
}

func copyTimeSlots(in []models.TimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, len(in))
	copy(out, in)
	return out
}
