package query

import "github.com/goliatone/go-notion/core"

func queryDependencyError(message string) error {
	return core.InternalError(message, nil)
}

func queryValidationError(field string, message string) error {
	return core.FieldValidationError("query", field, message)
}
