package models

import "time"

// ReportSummary aggregates the headline counters shown on the reports page.
type ReportSummary struct {
	TotalSessions     int       `json:"total_sessions"`
	ScheduledSessions int       `json:"scheduled_sessions"`
	CompletedSessions int       `json:"completed_sessions"`
	AbsentSessions    int       `json:"absent_sessions"`
	TotalTeachers     int       `json:"total_teachers"`
	TotalStudents     int       `json:"total_students"`
	BannedStudents    int       `json:"banned_students"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// TeacherReportRow tallies sessions per teacher.
type TeacherReportRow struct {
	TeacherID string `json:"teacher_id"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Sessions  int    `json:"sessions"`
	Completed int    `json:"completed"`
	Absent    int    `json:"absent"`
}

// SubjectReportRow tallies sessions per subject across teachers.
type SubjectReportRow struct {
	Subject  string `json:"subject"`
	Sessions int    `json:"sessions"`
}

// MonthlyReportRow tallies sessions per calendar month.
type MonthlyReportRow struct {
	Year     int `json:"year"`
	Month    int `json:"month"`
	Sessions int `json:"sessions"`
}

// ReportFormat selects the export rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportView selects which export column layout to produce.
type ReportView string

const (
	ReportViewTeacher ReportView = "teacher"
	ReportViewStudent ReportView = "student"
)
