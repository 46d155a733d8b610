package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/response"
)

type attendanceService interface {
	RegisterAttendance(ctx context.Context, teacherID, classID string, req dto.RegisterAttendanceRequest) (*models.SessionDetail, error)
	GetSession(ctx context.Context, teacherID, classID, rawDate string) (*models.SessionDetail, error)
}

// AttendanceHandler exposes class session endpoints.
type AttendanceHandler struct {
	attendance attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(attendance attendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Register godoc
// @Summary Register attendance for a class session
// @Description Creates the session for the date or replaces its whole roster.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body dto.RegisterAttendanceRequest true "Roster payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /classes/{id}/sessions [post]
func (h *AttendanceHandler) Register(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.RegisterAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	session, err := h.attendance.RegisterAttendance(c.Request.Context(), teacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// Get godoc
// @Summary Get a class session with its roster and annotation
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param date path string true "Session date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id}/sessions/{date} [get]
func (h *AttendanceHandler) Get(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	session, err := h.attendance.GetSession(c.Request.Context(), teacherID, c.Param("id"), c.Param("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}
