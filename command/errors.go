package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

func commandDependencyError(message string) error {
	return core.InternalError(message, nil)
}

func commandValidationError(field string, message string) error {
	return core.FieldValidationError("command", field, message)
}

// commandWrapValidation keeps a nil input nil so it can wrap Validate results directly.
func commandWrapValidation(err error, message string) error {
	if err == nil {
		return nil
	}
	return core.WrapError(err, goerrors.CategoryValidation, message, http.StatusBadRequest, core.ServiceErrorBadInput, nil)
}
