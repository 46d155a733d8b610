package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-records-api/internal/dto"
	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/response"
)

type answerKeyService interface {
	DefineAnswerKey(ctx context.Context, teacherID, assessmentID string, req dto.DefineAnswerKeyRequest) (*models.AnswerKeySummary, error)
	AnswerKeySummary(ctx context.Context, teacherID, assessmentID string) (*models.AnswerKeySummary, error)
}

// AnswerKeyHandler exposes answer key endpoints.
type AnswerKeyHandler struct {
	keys answerKeyService
}

// NewAnswerKeyHandler constructs the handler.
func NewAnswerKeyHandler(keys answerKeyService) *AnswerKeyHandler {
	return &AnswerKeyHandler{keys: keys}
}

// Define godoc
// @Summary Set or clear answer key letters
// @Tags Answer Keys
// @Accept json
// @Produce json
// @Param id path string true "Assessment ID"
// @Param payload body dto.DefineAnswerKeyRequest true "Answer key items"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assessments/{id}/answer-key [put]
func (h *AnswerKeyHandler) Define(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	var req dto.DefineAnswerKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	summary, err := h.keys.DefineAnswerKey(c.Request.Context(), teacherID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}

// Summary godoc
// @Summary Get the answer key of an assessment
// @Tags Answer Keys
// @Produce json
// @Param id path string true "Assessment ID"
// @Success 200 {object} response.Envelope
// @Router /assessments/{id}/answer-key [get]
func (h *AnswerKeyHandler) Summary(c *gin.Context) {
	teacherID, ok := callerID(c)
	if !ok {
		return
	}
	summary, err := h.keys.AnswerKeySummary(c.Request.Context(), teacherID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
