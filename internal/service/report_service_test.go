package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/scheduling"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
)

type memoryCache struct {
	entries map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func reportFixture() *fakeStore {
	store := &fakeStore{st: fixtureState()}
	monday := day(2024, time.March, 4)
	store.st.Sessions = []models.Session{
		{ID: "x1", TeacherID: "t-ahmet", StudentID: "s-ali", Date: monday, TimeSlot: "09:30-10:10", Subject: "Matematik", WeekYear: "2024-W10", Status: models.SessionCompleted, Notes: "türev"},
		{ID: "x2", TeacherID: "t-ahmet", StudentID: "s-fatma", Date: monday.AddDate(0, 0, 1), TimeSlot: "10:20-11:00", Subject: "Matematik", WeekYear: "2024-W10", Status: models.SessionScheduled},
		{ID: "x3", TeacherID: "t-ayse", StudentID: "s-ali", Date: monday.AddDate(0, 0, 30), TimeSlot: "09:30-10:10", Subject: "Fizik", WeekYear: "2024-W14", Status: models.SessionAbsent},
	}
	store.st.Students[0] = scheduling.Ban(store.st.Students[0], monday.AddDate(0, 0, 30))
	return store
}

func newReportService(store *fakeStore, cfg ReportServiceConfig, at time.Time) *ReportService {
	svc := NewReportService(store, cfg, nil)
	svc.now = func() time.Time { return at }
	return svc
}

func TestReportServiceSummary(t *testing.T) {
	now := day(2024, time.April, 4)
	svc := newReportService(reportFixture(), ReportServiceConfig{}, now)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalSessions)
	assert.Equal(t, 1, summary.ScheduledSessions)
	assert.Equal(t, 1, summary.CompletedSessions)
	assert.Equal(t, 1, summary.AbsentSessions)
	assert.Equal(t, 2, summary.TotalTeachers)
	assert.Equal(t, 2, summary.TotalStudents)
	assert.Equal(t, 1, summary.BannedStudents)
}

func TestReportServiceSummaryUsesCache(t *testing.T) {
	store := reportFixture()
	cache := newMemoryCache()
	now := day(2024, time.April, 4)
	svc := newReportService(store, ReportServiceConfig{Cache: cache, CacheEnabled: true, CacheTTL: time.Minute}, now)

	first, err := svc.Summary(context.Background())
	require.NoError(t, err)

	// Grow the dataset; the cached payload keeps serving.
	store.st.Sessions = append(store.st.Sessions, models.Session{ID: "x4", TeacherID: "t-ahmet", StudentID: "s-fatma", Status: models.SessionScheduled})
	second, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalSessions, second.TotalSessions)
}

func TestReportServiceByTeacher(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	rows, err := svc.ByTeacher(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "t-ahmet", rows[0].TeacherID, "busiest teacher first")
	assert.Equal(t, 2, rows[0].Sessions)
	assert.Equal(t, 1, rows[0].Completed)
	assert.Equal(t, 1, rows[1].Absent)
}

func TestReportServiceBySubjectAndMonthly(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	subjects, err := svc.BySubject(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, models.SubjectReportRow{Subject: "Matematik", Sessions: 2}, subjects[0])

	monthly, err := svc.Monthly(context.Background())
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, models.MonthlyReportRow{Year: 2024, Month: 3, Sessions: 2}, monthly[0])
	assert.Equal(t, models.MonthlyReportRow{Year: 2024, Month: 4, Sessions: 1}, monthly[1])
}

func TestReportServiceExportCSV(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	result, err := svc.Export(context.Background(), models.ReportViewTeacher, models.ReportFormatCSV, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	content := string(result.Content)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Tarih,Saat,Öğretmen,Öğrenci,Ders,Durum,Hafta,Notlar", lines[0])
	assert.Contains(t, content, "Tamamlandı")
	assert.Contains(t, content, "Gelmedi")
	assert.Contains(t, content, "04.03.2024")
	assert.Contains(t, content, "2024-W10")
}

func TestReportServiceExportRejectsBadParams(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	_, err := svc.Export(context.Background(), "weekly", models.ReportFormatCSV, ExportFilter{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), models.ReportViewTeacher, "xlsx", ExportFilter{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Export(context.Background(), models.ReportViewTeacher, models.ReportFormatCSV, ExportFilter{Month: "03-2024"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceExportFilters(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	result, err := svc.Export(context.Background(), models.ReportViewTeacher, models.ReportFormatCSV, ExportFilter{TeacherID: "t-ayse"})
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 2, "header plus the single Fizik session")
	assert.Contains(t, lines[1], "Fizik")

	result, err = svc.Export(context.Background(), models.ReportViewStudent, models.ReportFormatCSV, ExportFilter{Class: "10-b"})
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 2, "class match is case-insensitive")
	assert.Contains(t, lines[1], "Fatma Yılmaz")

	result, err = svc.Export(context.Background(), models.ReportViewTeacher, models.ReportFormatCSV, ExportFilter{Month: "2024-03"})
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(string(result.Content)), "\n")
	require.Len(t, lines, 3)
	assert.NotContains(t, string(result.Content), "03.04.2024")
}

func TestReportServiceExportPDF(t *testing.T) {
	svc := newReportService(reportFixture(), ReportServiceConfig{}, day(2024, time.April, 4))

	result, err := svc.Export(context.Background(), models.ReportViewStudent, models.ReportFormatPDF, ExportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Content), "%PDF"))
}
