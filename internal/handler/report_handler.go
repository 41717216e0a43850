package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/service"
	"github.com/okulapps/etut-api/pkg/response"
)

// ReportHandler serves aggregated report payloads and file exports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// Summary godoc
// @Summary Headline counters
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ByTeacher godoc
// @Summary Session tallies per teacher
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/teachers [get]
func (h *ReportHandler) ByTeacher(c *gin.Context) {
	rows, err := h.service.ByTeacher(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// BySubject godoc
// @Summary Session tallies per subject
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/subjects [get]
func (h *ReportHandler) BySubject(c *gin.Context) {
	rows, err := h.service.BySubject(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Monthly godoc
// @Summary Session tallies per calendar month
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reports/monthly [get]
func (h *ReportHandler) Monthly(c *gin.Context) {
	rows, err := h.service.Monthly(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Download the session log as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Param view query string false "teacher or student" default(teacher)
// @Param format query string false "csv or pdf" default(csv)
// @Param teacherId query string false "Limit to one teacher"
// @Param studentId query string false "Limit to one student"
// @Param class query string false "Limit to one class"
// @Param month query string false "Calendar month (YYYY-MM)"
// @Success 200 {file} binary
// @Router /reports/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	view := models.ReportView(c.DefaultQuery("view", string(models.ReportViewTeacher)))
	format := models.ReportFormat(c.DefaultQuery("format", string(models.ReportFormatCSV)))
	filter := service.ExportFilter{
		TeacherID: c.Query("teacherId"),
		StudentID: c.Query("studentId"),
		Class:     c.Query("class"),
		Month:     c.Query("month"),
	}

	result, err := h.service.Export(c.Request.Context(), view, format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
