package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/class-records-api/internal/models"
	"github.com/noah-isme/class-records-api/pkg/database"
	appErrors "github.com/noah-isme/class-records-api/pkg/errors"
)

const (
	tagAttendanceStatus = "attendance_status"
	tagAnswerLetter     = "answer_letter"
)

type transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewValidator returns a validator with the record-specific rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation(tagAttendanceStatus, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAttendanceStatus(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation(tagAnswerLetter, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseAnswerLetter(fl.Field().String())
		return ok
	})
	return v
}

// validationError maps validator failures onto the error kinds. Domain rules name the offending value.
func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		switch fe.Tag() {
		case tagAttendanceStatus:
			return appErrors.WithTarget(appErrors.ErrBadRequest, "unknown attendance status", fmt.Sprint(fe.Value()))
		case tagAnswerLetter:
			return appErrors.WithTarget(appErrors.ErrBadRequest, "answer letter must be one of A, B, C, D, E", fmt.Sprint(fe.Value()))
		}
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status,
			fmt.Sprintf("%s: %s failed on %s", message, fe.Namespace(), fe.Tag()))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

// classify keeps typed errors and turns storage failures into internal errors.
func classify(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if database.IsUniqueViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrBusinessRule.Code, appErrors.ErrBusinessRule.Status, "duplicate registration conflict")
	}
	return appErrors.Internal(err, message)
}

func duplicateOf(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}
