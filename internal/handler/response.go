package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"invoiceai/internal/domain"
	"invoiceai/internal/extract"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PagMeta holds pagination metadata.
type PagMeta struct {
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: msg, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: msg, Data: data})
}

// RespondPaginated sends a 200 success response with pagination metadata.
func RespondPaginated(c *gin.Context, data interface{}, meta PagMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: &meta})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapError translates service errors to HTTP status codes and error codes.
func MapError(err error) (status int, code, msg string) {
	var invalidFile *extract.InvalidFileError
	var extractionErr *extract.ExtractionError

	switch {
	case errors.As(err, &invalidFile):
		return http.StatusUnprocessableEntity, "INVALID_FILE", invalidFile.Error()
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity, "EXTRACTION_FAILED", extractionErr.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "invoice not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrMissingFile):
		return http.StatusUnprocessableEntity, "MISSING_FILE", "no file provided in the request"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusUnprocessableEntity, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: pdf, jpg, jpeg, png"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusUnprocessableEntity, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a service error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapError(err)
	if status >= 500 {
		log.Error().
			Err(err).
			Str("request_id", c.GetString("request_id")).
			Msg("internal error")
	}
	RespondError(c, status, code, msg)
}
