// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned by read paths when nothing matches.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFound(message string) error {
	return &NotFoundError{Message: message}
}

// ConflictError rejects a write that would duplicate an existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflict(message string) error {
	return &ConflictError{Message: message}
}

// ResourceNotFoundError names the resource, key field and key value that missed.
type ResourceNotFoundError struct {
	Resource string
	Field    string
	Value    int64
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("Resource %s not found with name %s and id %d", e.Resource, e.Field, e.Value)
}

func NewResourceNotFound(resource, field string, value int64) error {
	return &ResourceNotFoundError{Resource: resource, Field: field, Value: value}
}

// InvalidInputError reports a request the service cannot act on.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return e.Message
}

func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// HTTPStatus maps an error returned by the service layer to a response status.
func HTTPStatus(err error) int {
	var (
		notFound *NotFoundError
		resource *ResourceNotFoundError
		conflict *ConflictError
		invalid  *InvalidInputError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &notFound), errors.As(err, &resource):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsClientError reports whether err is one of the domain error kinds.
func IsClientError(err error) bool {
	status := HTTPStatus(err)
	return status >= 400 && status < 500
}
