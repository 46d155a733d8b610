package dto

// AnswerKeyItem sets or clears the letter of one question. A null letter clears it.
type AnswerKeyItem struct {
	QuestionID string  `json:"question_id" validate:"required"`
	Letter     *string `json:"letter" validate:"omitempty,answer_letter"`
}

// DefineAnswerKeyRequest applies a batch of answer key changes.
type DefineAnswerKeyRequest struct {
	Items []AnswerKeyItem `json:"items" validate:"required,min=1,dive"`
}
