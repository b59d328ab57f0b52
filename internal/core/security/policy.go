// Package security holds the period closing policy applied to record changes.
package security

import (
	"context"
	"time"

	"millstock/internal/core/apperror"
)

// PeriodPolicy decides whether records of a given date may still change.
type PeriodPolicy interface {
	// CanModify returns PERIOD_CLOSED when the date lies in a closed period.
	CanModify(ctx context.Context, recordDate time.Time) error

	// ClosedUntil returns the first open date (zero when nothing is closed).
	ClosedUntil(ctx context.Context) time.Time
}

// StrictPolicy forbids any change to dates before closedUntil.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates policy that forbids changes before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanModify(ctx context.Context, recordDate time.Time) error {
	if recordDate.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01-02")).
			WithDetail("recordDate", recordDate.Format("2006-01-02"))
	}
	return nil
}

func (p *StrictPolicy) ClosedUntil(ctx context.Context) time.Time {
	return p.closedUntil
}

// OpenPolicy allows all changes (development and tests).
type OpenPolicy struct{}

func (OpenPolicy) CanModify(ctx context.Context, recordDate time.Time) error { return nil }
func (OpenPolicy) ClosedUntil(ctx context.Context) time.Time                 { return time.Time{} }

// NewPolicy returns a StrictPolicy when closedUntil is set and OpenPolicy otherwise.
func NewPolicy(closedUntil time.Time) PeriodPolicy {
	if closedUntil.IsZero() {
		return OpenPolicy{}
	}
	return NewStrictPolicy(closedUntil)
}
