// README: Base handler utilities (JSON helpers, problem responses, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"propertyapi/internal/modules/propertymoney"
)

const (
	problemContentType   = "application/problem+json"
	problemWithMessage   = "/problem/problem-with-message"
	problemConstraint    = "/problem/constraint-violation"
	problemDefault       = "about:blank"
	validationMessageKey = "error.validation"
)

// Problem is the JSON error document returned for every failed request.
type Problem struct {
	Type        string       `json:"type"`
	Title       string       `json:"title"`
	Status      int          `json:"status"`
	Detail      string       `json:"detail,omitempty"`
	Path        string       `json:"path,omitempty"`
	Message     string       `json:"message"`
	EntityName  string       `json:"entityName,omitempty"`
	ErrorKey    string       `json:"errorKey,omitempty"`
	Params      string       `json:"params,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
}

type FieldError struct {
	ObjectName string `json:"objectName"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeProblem(c *gin.Context, p Problem) {
	if p.Type == "" {
		p.Type = problemDefault
	}
	if p.Path == "" {
		p.Path = c.Request.URL.Path
	}
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(p.Status, p)
}

func writeHTTPProblem(c *gin.Context, status int, detail string) {
	writeProblem(c, Problem{
		Title:   http.StatusText(status),
		Status:  status,
		Detail:  detail,
		Message: "error.http." + strconv.Itoa(status),
	})
}

// writeBadRequestAlert renders a rejected request for an entity together with
// the failure alert headers.
func writeBadRequestAlert(c *gin.Context, headers HeaderUtil, title, entityName, errorKey string) {
	headers.FailureAlert(c.Writer.Header(), entityName, errorKey)
	writeProblem(c, Problem{
		Type:       problemWithMessage,
		Title:      title,
		Status:     http.StatusBadRequest,
		Message:    "error." + errorKey,
		EntityName: entityName,
		ErrorKey:   errorKey,
		Params:     entityName,
	})
}

// writeBindError maps a ShouldBindJSON failure to a 400 problem.
func writeBindError(c *gin.Context, objectName string, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeHTTPProblem(c, http.StatusBadRequest, "malformed request body")
		return
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			ObjectName: objectName,
			Field:      fe.Field(),
			Message:    fe.Tag(),
		})
	}
	writeProblem(c, Problem{
		Type:        problemConstraint,
		Title:       "Method argument not valid",
		Status:      http.StatusBadRequest,
		Message:     validationMessageKey,
		FieldErrors: fields,
	})
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, propertymoney.ErrInvalidSort):
		writeHTTPProblem(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, propertymoney.ErrNotFound):
		writeHTTPProblem(c, http.StatusNotFound, "")
	default:
		_ = c.Error(err)
		writeHTTPProblem(c, http.StatusInternalServerError, "")
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeHTTPProblem(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// NoRoute renders unknown paths as a 404 problem.
func NoRoute(c *gin.Context) {
	writeHTTPProblem(c, http.StatusNotFound, "")
}
