package services

import "fmt"

// NotFoundError means a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// UnauthorizedError means the entity exists but belongs to a different user.
type UnauthorizedError struct {
	Resource string
	ID       string
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized access to %s: %s", e.Resource, e.ID)
}

// ValidationError means a precondition on the request failed.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError means the request would duplicate an existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// UploadError is a blob store failure. It always happens before any record is
// created, so nothing needs cleanup.
type UploadError struct {
	Step string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %s: %v", e.Step, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ServiceError wraps an inference or persistence failure with the workflow
// step that produced it.
type ServiceError struct {
	Step string
	Err  error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
