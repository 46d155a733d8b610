package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/internal/service"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
	"github.com/noah-isme/class-records-api/pkg/response"
)

const queryDateLayout = "2006-01-02"

type reportService interface {
	FrequencyReport(ctx context.Context, teacherID, classID string, from, to time.Time) (*models.FrequencyReport, error)
	PerformanceReport(ctx context.Context, teacherID, classID, period string) (*models.PerformanceReport, error)
}

type reportExporter interface {
	FrequencyFile(report *models.FrequencyReport, format dto.ReportFormat) (*service.ExportFile, error)
	PerformanceFile(report *models.PerformanceReport, format dto.ReportFormat) (*service.ExportFile, error)
}

// ReportHandler serves the computed class reports as JSON or downloadable files.
type ReportHandler struct {
	reports  reportService
	exporter reportExporter
}

// NewReportHandler constructs the handler. A nil exporter disables file formats.
func NewReportHandler(reports reportService, exporter reportExporter) *ReportHandler {
	return &ReportHandler{reports: reports, exporter: exporter}
}

// Frequency godoc
// @Summary Attendance frequency report of a class
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param date_from query string true "Start date (YYYY-MM-DD)"
// @Param date_to query string true "End date (YYYY-MM-DD)"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes/{id}/reports/frequency [get]
func (h *ReportHandler) Frequency(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	var query dto.FrequencyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	from, err := parseQueryDate("date_from", query.DateFrom)
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseQueryDate("date_to", query.DateTo)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := h.format(query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.FrequencyReport(c.Request.Context(), teacherID, c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == dto.ReportFormatJSON {
		response.JSON(c, http.StatusOK, report)
		return
	}
	file, err := h.exporter.FrequencyFile(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Performance godoc
// @Summary Performance report of a class
// @Tags Reports
// @Produce json
// @Param id path string true "Class ID"
// @Param period query string false "Session period label"
// @Param format query string false "json, csv, pdf or xlsx"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/reports/performance [get]
func (h *ReportHandler) Performance(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	var query dto.PerformanceReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	format, err := h.format(query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}

	report, err := h.reports.PerformanceReport(c.Request.Context(), teacherID, c.Param("id"), strings.TrimSpace(query.Period))
	if err != nil {
		response.Error(c, err)
		return
	}
	if format == dto.ReportFormatJSON {
		response.JSON(c, http.StatusOK, report)
		return
	}
	file, err := h.exporter.PerformanceFile(report, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *ReportHandler) format(raw dto.ReportFormat) (dto.ReportFormat, error) {
	format := dto.ReportFormat(strings.ToLower(strings.TrimSpace(string(raw))))
	if format == "" || format == dto.ReportFormatJSON {
		return dto.ReportFormatJSON, nil
	}
	if h.exporter == nil {
		return "", appErrors.WithTarget(appErrors.ErrBadRequest, "report export is disabled", string(format))
	}
	return format, nil
}

func parseQueryDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.WithTarget(appErrors.ErrBadRequest, name+" is required", name)
	}
	date, err := time.Parse(queryDateLayout, raw)
	if err != nil {
		return time.Time{}, appErrors.WithTarget(appErrors.ErrBadRequest, name+" must be formatted as YYYY-MM-DD", raw)
	}
	return date, nil
}
