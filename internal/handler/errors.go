package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tasktracker/internal/auth"
	"tasktracker/internal/logger"
	"tasktracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	msgValidationFailed = "Validation failed"
	msgRequiredField    = "This field is required."
	msgNotNull          = "This field may not be null."
	msgIncorrectType    = "Incorrect type."
	msgBadDatetime      = "Datetime has wrong format. Use RFC 3339, e.g. 2030-01-31T18:00:00Z."
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code,omitempty"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// respondError maps service and token errors onto HTTP statuses. Anything unknown is logged and hidden.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Fields: verr.ByField()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found.", Code: "not_found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "You do not have permission to perform this action.", Code: "permission_denied"})
	case errors.Is(err, service.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:  msgValidationFailed,
			Fields: map[string][]string{"username": {"A user with that username already exists."}},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No active account found with the given credentials", Code: "invalid_credentials"})
	case errors.Is(err, auth.ErrTokenRevoked):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Token is blacklisted", Code: "token_revoked"})
	case errors.Is(err, auth.ErrTokenExpired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Token is expired", Code: "token_expired"})
	case errors.Is(err, auth.ErrTokenInvalid):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Token is invalid", Code: "token_not_valid"})
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// respondBindError reports a request body that could not be decoded or failed binding rules.
func respondBindError(c *gin.Context, err error) {
	fields := bindErrorFields(err)
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "parse_error"})
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgValidationFailed, Fields: fields})
}

func bindErrorFields(err error) map[string][]string {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		parseErr  *time.ParseError
		fieldErrs *service.ValidationError
	)
	switch {
	case errors.As(err, &verrs):
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := strings.ToLower(fe.Field())
			fields[name] = append(fields[name], ruleMessage(fe))
		}
		return fields
	case errors.As(err, &fieldErrs):
		return fieldErrs.ByField()
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return map[string][]string{typeErr.Field: {msgIncorrectType}}
	case errors.As(err, &parseErr):
		return map[string][]string{"due_date": {msgBadDatetime}}
	case errors.Is(err, io.EOF):
		return map[string][]string{"non_field_errors": {"Request body is empty."}}
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequiredField
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
