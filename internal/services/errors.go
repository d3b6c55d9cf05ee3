package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRow runs struct tag validation and reports failures as a
// validation error listing every offending field.
func validateRow(op string, row any) error {
	err := validate.Struct(row)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domainagg.NewError(domainagg.CodeValidation, op, err.Error(), err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return domainagg.NewError(domainagg.CodeValidation, op, strings.Join(msgs, "; "), err)
}

func invalid(op, msg string) error {
	return domainagg.NewError(domainagg.CodeValidation, op, msg, nil)
}

// storeError codes a repository failure. Missing rows become not_found for
// resource; everything else goes through the aggregate error mapping.
func storeError(op, resource string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainagg.NotFound(op, resource)
	}
	return aggregates.MapError(op, err)
}
