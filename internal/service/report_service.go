package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
	"github.com/okulapps/etut-api/pkg/export"
	"github.com/okulapps/etut-api/pkg/storage"
)

// Export column headers and status labels. The reports are consumed by
// Turkish-speaking staff, so the rendered files keep the Turkish vocabulary
// while the API itself stays English.
var (
	exportHeaders = []string{"Tarih", "Saat", "Öğretmen", "Öğrenci", "Ders", "Durum", "Hafta", "Notlar"}

	statusLabels = map[models.SessionStatus]string{
		models.SessionScheduled: "Planlandı",
		models.SessionCompleted: "Tamamlandı",
		models.SessionAbsent:    "Gelmedi",
	}
)

type reportCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ExportFilter narrows the exported session log. Zero values mean "all";
// Month is a "2006-01" calendar month.
type ExportFilter struct {
	TeacherID string
	StudentID string
	Class     string
	Month     string
}

// ExportResult is a rendered report file.
type ExportResult struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// ReportService aggregates the session log into report payloads and renders
// file exports.
type ReportService struct {
	store        stateStore
	cache        reportCache
	cacheTTL     time.Duration
	cacheEnabled bool
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	archive      *storage.LocalStorage
	retention    time.Duration
	logger       *zap.Logger
	metrics      *MetricsService
	now          func() time.Time
}

// ReportServiceConfig wires the optional pieces of the report pipeline.
type ReportServiceConfig struct {
	Cache        reportCache
	CacheTTL     time.Duration
	CacheEnabled bool
	Archive      *storage.LocalStorage
	Retention    time.Duration
	Metrics      *MetricsService
}

// NewReportService constructs a ReportService.
func NewReportService(store stateStore, cfg ReportServiceConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		store:        store,
		cache:        cfg.Cache,
		cacheTTL:     cfg.CacheTTL,
		cacheEnabled: cfg.CacheEnabled && cfg.Cache != nil,
		csv:          export.NewCSVExporter(),
		pdf:          export.NewPDFExporter(),
		archive:      cfg.Archive,
		retention:    cfg.Retention,
		logger:       logger,
		metrics:      cfg.Metrics,
		now:          time.Now,
	}
}

// Summary returns the headline counters.
func (s *ReportService) Summary(ctx context.Context) (*models.ReportSummary, error) {
	key := repository.ReportCacheKey("summary")
	var cached models.ReportSummary
	if s.lookup(ctx, key, &cached) {
		return &cached, nil
	}

	st := s.store.View()
	now := s.now()
	summary := models.ReportSummary{
		TotalSessions: len(st.Sessions),
		TotalTeachers: len(st.Teachers),
		TotalStudents: len(st.Students),
		GeneratedAt:   now.UTC(),
	}
	for _, session := range st.Sessions {
		switch session.Status {
		case models.SessionScheduled:
			summary.ScheduledSessions++
		case models.SessionCompleted:
			summary.CompletedSessions++
		case models.SessionAbsent:
			summary.AbsentSessions++
		}
	}
	for _, student := range st.Students {
		if scheduling.IsBanned(student, now) {
			summary.BannedStudents++
		}
	}

	s.put(ctx, key, summary)
	return &summary, nil
}

// ByTeacher tallies the session log per teacher, sorted by session count
// descending.
func (s *ReportService) ByTeacher(ctx context.Context) ([]models.TeacherReportRow, error) {
	key := repository.ReportCacheKey("teachers")
	var cached []models.TeacherReportRow
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	st := s.store.View()
	rows := make([]models.TeacherReportRow, 0, len(st.Teachers))
	for _, teacher := range st.Teachers {
		row := models.TeacherReportRow{TeacherID: teacher.ID, Name: teacher.Name, Subject: teacher.Subject}
		for _, session := range st.Sessions {
			if session.TeacherID != teacher.ID {
				continue
			}
			row.Sessions++
			switch session.Status {
			case models.SessionCompleted:
				row.Completed++
			case models.SessionAbsent:
				row.Absent++
			}
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Sessions != rows[j].Sessions {
			return rows[i].Sessions > rows[j].Sessions
		}
		return rows[i].Name < rows[j].Name
	})

	s.put(ctx, key, rows)
	return rows, nil
}

// BySubject tallies sessions per subject.
func (s *ReportService) BySubject(ctx context.Context) ([]models.SubjectReportRow, error) {
	key := repository.ReportCacheKey("subjects")
	var cached []models.SubjectReportRow
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	counts := map[string]int{}
	for _, session := range s.store.Sessions() {
		counts[session.Subject]++
	}
	rows := make([]models.SubjectReportRow, 0, len(counts))
	for subject, n := range counts {
		rows = append(rows, models.SubjectReportRow{Subject: subject, Sessions: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Sessions != rows[j].Sessions {
			return rows[i].Sessions > rows[j].Sessions
		}
		return rows[i].Subject < rows[j].Subject
	})

	s.put(ctx, key, rows)
	return rows, nil
}

// Monthly tallies sessions per calendar month, oldest first.
func (s *ReportService) Monthly(ctx context.Context) ([]models.MonthlyReportRow, error) {
	key := repository.ReportCacheKey("monthly")
	var cached []models.MonthlyReportRow
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	type yearMonth struct {
		year  int
		month int
	}
	counts := map[yearMonth]int{}
	for _, session := range s.store.Sessions() {
		counts[yearMonth{session.Date.Year(), int(session.Date.Month())}]++
	}
	rows := make([]models.MonthlyReportRow, 0, len(counts))
	for ym, n := range counts {
		rows = append(rows, models.MonthlyReportRow{Year: ym.year, Month: ym.month, Sessions: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})

	s.put(ctx, key, rows)
	return rows, nil
}

// Export renders the session log as a downloadable file and archives a copy
// under the export directory. The view picks the sort: per teacher or per
// student.
func (s *ReportService) Export(ctx context.Context, view models.ReportView, format models.ReportFormat, filter ExportFilter) (*ExportResult, error) {
	if view != models.ReportViewTeacher && view != models.ReportViewStudent {
		return nil, appErrors.Clone(appErrors.ErrValidation, "view must be teacher or student")
	}
	if filter.Month != "" {
		if _, err := time.Parse("2006-01", filter.Month); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "month must be formatted as YYYY-MM")
		}
	}

	dataset, title := s.buildDataset(view, filter)
	now := s.now()

	var content []byte
	var contentType string
	var err error
	switch format {
	case models.ReportFormatCSV:
		content, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case models.ReportFormatPDF:
		content, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("etut-%s-%s.%s", view, now.Format("2006-01-02-150405"), format)
	s.archiveCopy(filename, content)

	return &ExportResult{Filename: filename, ContentType: contentType, Content: content}, nil
}

func (s *ReportService) buildDataset(view models.ReportView, filter ExportFilter) (export.Dataset, string) {
	st := s.store.View()

	teacherNames := make(map[string]string, len(st.Teachers))
	for _, teacher := range st.Teachers {
		teacherNames[teacher.ID] = teacher.Name
	}
	studentNames := make(map[string]string, len(st.Students))
	studentClasses := make(map[string]string, len(st.Students))
	for _, student := range st.Students {
		studentNames[student.ID] = student.Name
		studentClasses[student.ID] = student.Class
	}

	sessions := make([]models.Session, 0, len(st.Sessions))
	for _, session := range st.Sessions {
		if filter.TeacherID != "" && session.TeacherID != filter.TeacherID {
			continue
		}
		if filter.StudentID != "" && session.StudentID != filter.StudentID {
			continue
		}
		if filter.Class != "" && !strings.EqualFold(studentClasses[session.StudentID], filter.Class) {
			continue
		}
		if filter.Month != "" && session.Date.Format("2006-01") != filter.Month {
			continue
		}
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		var a, b string
		if view == models.ReportViewTeacher {
			a, b = teacherNames[sessions[i].TeacherID], teacherNames[sessions[j].TeacherID]
		} else {
			a, b = studentNames[sessions[i].StudentID], studentNames[sessions[j].StudentID]
		}
		if a != b {
			return a < b
		}
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		return sessions[i].TimeSlot < sessions[j].TimeSlot
	})

	rows := make([]map[string]string, 0, len(sessions))
	for _, session := range sessions {
		rows = append(rows, map[string]string{
			"Tarih":    session.Date.Format("02.01.2006"),
			"Saat":     session.TimeSlot,
			"Öğretmen": nameOrDash(teacherNames, session.TeacherID),
			"Öğrenci":  nameOrDash(studentNames, session.StudentID),
			"Ders":     session.Subject,
			"Durum":    statusLabels[session.Status],
			"Hafta":    session.WeekYear,
			"Notlar":   session.Notes,
		})
	}

	title := "Etüt Programı - Öğretmen"
	if view == models.ReportViewStudent {
		title = "Etüt Programı - Öğrenci"
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}, title
}

// archiveCopy keeps a copy of every generated file and prunes old ones.
// Failures are logged, never surfaced: the download must not fail because the
// archive disk is full.
func (s *ReportService) archiveCopy(filename string, content []byte) {
	if s.archive == nil {
		return
	}
	if _, err := s.archive.Save(filename, content); err != nil {
		s.logger.Warn("export archive write failed", zap.String("filename", filename), zap.Error(err))
		return
	}
	if s.retention > 0 {
		if deleted, err := s.archive.CleanupOlderThan(s.retention); err != nil {
			s.logger.Warn("export archive cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("pruned old export files", zap.Int("count", len(deleted)))
		}
	}
}

func (s *ReportService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.cacheEnabled {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	hit := err == nil
	s.metrics.RecordCacheLookup(hit)
	if err != nil && err != appErrors.ErrCacheMiss {
		s.logger.Warn("report cache lookup failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *ReportService) put(ctx context.Context, key string, value interface{}) {
	if !s.cacheEnabled {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func nameOrDash(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return "-"
}
