package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"juriscope/internal/ingest"
	"juriscope/internal/lifecycle"
	"juriscope/internal/util"
)

var errBadRequest = errors.New("bad request")

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, ingest.ErrInvalidDocument):
		return http.StatusBadRequest
	case errors.Is(err, util.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrDuplicateDocument),
		errors.Is(err, util.ErrConflict),
		errors.Is(err, util.ErrConcurrentModification),
		errors.Is(err, util.ErrIntegrityMismatch):
		return http.StatusConflict
	case errors.Is(err, util.ErrInsufficientContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, util.ErrAnalysisFailure),
		errors.Is(err, util.ErrQuotaExhausted),
		errors.Is(err, util.ErrRateLimited),
		errors.Is(err, util.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	s.failWith(c, statusFor(err), err)
}

func (s *Server) failWith(c *gin.Context, status int, err error) {
	if status >= 500 {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": toAPIError(status, err)})
}

func toAPIError(status int, err error) apiError {
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}
	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{Code: "JS-DB-5001", Message: "Database schema is not initialized. Run migrations and retry."}
		case strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{Code: "JS-DB-5002", Message: "Database connection is unavailable. Check local services and retry."}
		case errors.Is(err, lifecycle.ErrPlacementFailed):
			return apiError{Code: "JS-POS-5003", Message: "Article was published but general placement failed. Retry the placement."}
		case status == http.StatusBadGateway:
			return apiError{Code: "JS-API-5020", Message: "Analysis provider unavailable. Retry shortly."}
		case status == http.StatusServiceUnavailable:
			return apiError{Code: "JS-API-5030", Message: "Workflow service is not configured."}
		default:
			return apiError{Code: "JS-API-5000", Message: "Internal server error. Please retry or check service logs."}
		}
	case status == http.StatusBadRequest:
		return apiError{Code: "JS-API-4001", Message: clientMessage(err, "Invalid request. Check inputs and retry.")}
	case status == http.StatusNotFound:
		return apiError{Code: "JS-API-4004", Message: "Requested resource was not found."}
	case status == http.StatusConflict:
		switch {
		case errors.Is(err, util.ErrDuplicateDocument):
			return apiError{Code: "JS-DOC-4091", Message: "Document already ingested."}
		case errors.Is(err, util.ErrIntegrityMismatch):
			return apiError{Code: "JS-DOC-4092", Message: "Stored checksums do not match; document marked corrupted."}
		case errors.Is(err, util.ErrConcurrentModification):
			return apiError{Code: "JS-API-4093", Message: "Concurrent modification. Retry the operation."}
		case errors.Is(err, lifecycle.ErrPlacementFailed):
			return apiError{Code: "JS-POS-4094", Message: "Article was published but general placement conflicted. Retry the placement."}
		}
		return apiError{Code: "JS-API-4009", Message: clientMessage(err, "Operation conflicts with current state.")}
	case status == http.StatusUnprocessableEntity:
		return apiError{Code: "JS-DOC-4221", Message: "Document has no analyzable content."}
	}
	return apiError{Code: "JS-API-4000", Message: "Request failed."}
}

// clientMessage surfaces validation and transition details, which carry no internals.
func clientMessage(err error, fallback string) string {
	var ce *util.ConflictError
	switch {
	case errors.As(err, &ce):
		return ce.Error()
	case errors.Is(err, ingest.ErrInvalidDocument), errors.Is(err, errBadRequest):
		return err.Error()
	}
	return fallback
}
