package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/response"
)

type gradeService interface {
	LaunchGrades(ctx context.Context, teacherID, assessmentID string, req dto.LaunchGradesRequest) (*models.GradeLaunchResult, error)
	ListGrades(ctx context.Context, teacherID, assessmentID string) ([]models.GradeEntry, error)
}

// GradeHandler exposes grade endpoints.
type GradeHandler struct {
	grades gradeService
}

// NewGradeHandler constructs handler.
func NewGradeHandler(grades gradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Launch godoc
// @Summary Launch grades for an assessment
// @Description Inserts new grades and overwrites existing ones. The batch is rejected as a whole on any invalid entry.
// @Tags Grades
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body dto.LaunchGradesRequest true "Grade entries"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessments/{id}/grades [post]
func (h *GradeHandler) Launch(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.LaunchGradesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.grades.LaunchGrades(c.Request.Context(), teacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// List godoc
// @Summary List grades of an assessment
// @Tags Grades
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/grades [get]
func (h *GradeHandler) List(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	grades, err := h.grades.ListGrades(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, map[string]interface{}{"total": len(grades)})
}
