package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or source type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for a collection.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrNoScope indicates the user has not selected a collection to search.
	ErrNoScope = errors.New("no collection selected")

	// ErrCompletionUnavailable indicates no completion service is configured.
	ErrCompletionUnavailable = errors.New("completion service unavailable")

	// ErrSourceUnavailable indicates no ingestion source is configured.
	ErrSourceUnavailable = errors.New("ingestion source unavailable")

	// ErrTransientService indicates a completion failure worth retrying:
	// timeouts, rate limits and server errors.
	ErrTransientService = errors.New("transient service error")

	// ErrPermanentService indicates a completion failure that will not
	// succeed on retry: bad credentials or a malformed request.
	ErrPermanentService = errors.New("permanent service error")

	// ErrStoreConsistency indicates a write could not be applied atomically
	// to both the document store and the lexical index.
	ErrStoreConsistency = errors.New("store consistency error")
)

// UserFacingMessage is shown to end users when answering fails.
// The underlying detail is attached separately for diagnostics.
const UserFacingMessage = "Internal error, please contact an administrator."

// ErrorKind classifies a completion service failure.
type ErrorKind string

const (
	// KindTransient failures are retried.
	KindTransient ErrorKind = "transient"

	// KindPermanent failures are surfaced immediately.
	KindPermanent ErrorKind = "permanent"
)

// ServiceError is a classified failure from an external completion service.
type ServiceError struct {
	Kind       ErrorKind
	Provider   string
	StatusCode int
	Err        error
}

// NewServiceError classifies err using the HTTP status code returned by provider.
// A zero status code means the request never got a response and is transient.
func NewServiceError(provider string, statusCode int, err error) *ServiceError {
	return &ServiceError{
		Kind:       ClassifyStatus(statusCode),
		Provider:   provider,
		StatusCode: statusCode,
		Err:        err,
	}
}

// Error implements error.
func (e *ServiceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s error: %v", e.Provider, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches ErrTransientService or ErrPermanentService according to Kind.
func (e *ServiceError) Is(target error) bool {
	switch target {
	case ErrTransientService:
		return e.Kind == KindTransient
	case ErrPermanentService:
		return e.Kind == KindPermanent
	}
	return false
}

// ClassifyStatus maps an HTTP status code to an ErrorKind.
// Timeouts, conflicts, rate limits and 5xx are transient; other 4xx are permanent.
func ClassifyStatus(code int) ErrorKind {
	switch {
	case code == 0:
		return KindTransient
	case code == http.StatusRequestTimeout,
		code == http.StatusConflict,
		code == http.StatusTooManyRequests,
		code >= http.StatusInternalServerError:
		return KindTransient
	case code >= http.StatusBadRequest:
		return KindPermanent
	default:
		return KindTransient
	}
}

// IsPermanent reports whether err is a classified permanent failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanentService)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
