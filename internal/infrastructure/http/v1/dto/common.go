// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain"
)

// --- Envelope ---

// Response is the success envelope of every JSON endpoint.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the error envelope rendered by middleware.ErrorHandler.
type ErrorResponse struct {
	Success bool           `json:"success"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// --- List ---

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// NewListResponse copies the pagination of res.
func NewListResponse[T any](res domain.ListResult[T]) ListResponse {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse{
		Items:      items,
		TotalCount: res.TotalCount,
		Limit:      res.Limit,
		Offset:     res.Offset,
	}
}

// ListQuery holds the query parameters of record listings.
type ListQuery struct {
	From   string `form:"from"`
	To     string `form:"to"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter parses the dates and builds the domain filter.
func (q ListQuery) ToFilter() (domain.ListFilter, error) {
	filter := domain.DefaultListFilter()
	if q.Limit > 0 {
		filter.Limit = q.Limit
	}
	filter.Offset = q.Offset
	filter.Ascending = q.Order == "asc"

	var err error
	if filter.From, err = OptionalDate("from", q.From); err != nil {
		return filter, err
	}
	if filter.To, err = OptionalDate("to", q.To); err != nil {
		return filter, err
	}
	return filter, nil
}

// RangeQuery is a required inclusive date range.
type RangeQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// Dates parses both bounds.
func (q RangeQuery) Dates() (from, to types.Date, err error) {
	if from, err = RequiredDate("from", q.From); err != nil {
		return
	}
	to, err = RequiredDate("to", q.To)
	return
}

// DateQuery is a single required date.
type DateQuery struct {
	Date string `form:"date" binding:"required"`
}

// HistoryQuery limits a change log listing.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

// RequiredDate parses a date parameter, rejecting blanks.
func RequiredDate(name, value string) (types.Date, error) {
	if value == "" {
		return types.Date{}, apperror.NewValidation(name + " is required").WithDetail("field", name)
	}
	return OptionalDate(name, value)
}

// OptionalDate parses a date parameter; blank yields the zero date.
func OptionalDate(name, value string) (types.Date, error) {
	if value == "" {
		return types.Date{}, nil
	}
	d, err := types.ParseDate(value)
	if err != nil {
		return types.Date{}, apperror.NewValidation("invalid date").
			WithDetail("field", name).
			WithDetail("value", value)
	}
	return d, nil
}
