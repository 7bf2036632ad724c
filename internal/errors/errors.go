package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned when a bearer credential is missing, invalid,
	// expired, or names a user that no longer exists.
	ErrUnauthorized = errors.New("could not validate credentials")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	// ErrUserAlreadyExists is returned when the username or email is taken.
	ErrUserAlreadyExists = errors.New("username or email already registered")
	// ErrInvalidFileType is returned when the declared content type is not allowed.
	ErrInvalidFileType = errors.New("invalid file type, only JPEG, PNG, GIF, and WebP are allowed")
	// ErrFileTooLarge is returned when the raw upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large, maximum size is 10MB")
	// ErrInvalidImageFile is returned when the payload cannot be decoded or re-encoded.
	ErrInvalidImageFile = errors.New("invalid image file")
	// ErrImageNotFound is returned when no image matches both id and owner.
	ErrImageNotFound = errors.New("image not found")
)

// ImageError is a failed normalization step. Kind is one of the image
// sentinels above; Cause is the underlying codec error, if any.
type ImageError struct {
	Kind  error
	Cause error
}

func (e *ImageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid image file: %v", e.Cause)
	}
	return e.Kind.Error()
}

// Is lets errors.Is match on Kind.
func (e *ImageError) Is(target error) bool {
	return e.Kind == target
}

// Unwrap returns the codec error.
func (e *ImageError) Unwrap() error {
	return e.Cause
}

// NewImageError wraps a cause with its kind.
func NewImageError(kind, cause error) *ImageError {
	return &ImageError{Kind: kind, Cause: cause}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Detail: e.Message,
		Code:   e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var imgErr *ImageError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, "Could not validate credentials", "UNAUTHORIZED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Incorrect username or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusBadRequest, "Username or email already registered", "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrInvalidFileType):
		return NewHTTPError(http.StatusBadRequest, "Invalid file type. Only JPEG, PNG, GIF, and WebP are allowed.", "INVALID_FILE_TYPE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, "File too large. Maximum size is 10MB", "FILE_TOO_LARGE")
	case errors.As(err, &imgErr) && errors.Is(imgErr, ErrInvalidImageFile) && imgErr.Cause != nil:
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid image file: %v", imgErr.Cause), "INVALID_IMAGE_FILE")
	case errors.Is(err, ErrInvalidImageFile):
		return NewHTTPError(http.StatusBadRequest, "Invalid image file", "INVALID_IMAGE_FILE")
	case errors.Is(err, ErrImageNotFound):
		return NewHTTPError(http.StatusNotFound, "Image not found", "IMAGE_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}
