package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
	"github.com/jwalitptl/hivcare-api/pkg/validator"
)

// Page is the data payload of list endpoints.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func NewPage[T any](items []T, total int, p model.Pagination) Page[T] {
	p = p.Normalize()
	return Page[T]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}
}

// Fail records err for the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseID reads a UUID path parameter, failing the request when malformed.
func ParseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		Fail(c, apperrors.BadRequest("invalid "+param, err))
		return uuid.Nil, false
	}
	return id, true
}

// ParseQueryID reads an optional UUID query parameter.
func ParseQueryID(c *gin.Context, key string) (uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		Fail(c, apperrors.BadRequest("invalid "+key, err))
		return uuid.Nil, false
	}
	return id, true
}

// BindJSON decodes and validates the body into req.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		Fail(c, bindError(err))
		return false
	}
	return true
}

// BindQuery decodes and validates query parameters into req.
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		Fail(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) error {
	if fields := validator.Describe(err); len(fields) > 0 {
		return apperrors.BadRequest(validator.Summary(fields), err)
	}
	return apperrors.BadRequest("invalid request", err)
}

// StatusOf maps an error to the HTTP status and client-facing message.
// Unclassified errors become a bare 500.
func StatusOf(err error) (int, string) {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		return appErr.StatusCode(), appErr.Message
	}
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return http.StatusNotFound, "resource not found"
	}
	return http.StatusInternalServerError, "internal server error"
}
