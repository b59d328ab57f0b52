package by_production

import (
	"context"
	"fmt"

	"millstock/internal/core/id"
	"millstock/internal/core/types"
	"millstock/internal/domain"
	"millstock/internal/domain/registers/stock_product"
)

// EntityName is used in errors and logs.
const EntityName = "by-production stock"

// Repository stores by-production records.
type Repository = domain.RecordRepository[*Stock]

// Service manages by-production records.
type Service struct {
	*domain.RecordService[*Stock]
}

// NewService creates the service. cfg.Source and cfg.EntityName are set here.
func NewService(cfg domain.RecordServiceConfig[*Stock]) *Service {
	cfg.Source = stock_product.SourceByProduction
	cfg.EntityName = EntityName
	s := &Service{RecordService: domain.NewRecordService(cfg)}
	s.Hooks().OnBeforeSave(func(ctx context.Context, st *Stock) error {
		st.Derive()
		return nil
	})
	return s
}

// PreviousBalance returns the closing balances of the latest record before date;
// zero balances when there is none.
func (s *Service) PreviousBalance(ctx context.Context, date types.Date) (Balances, error) {
	prev, found, err := s.LatestBefore(ctx, date)
	if err != nil {
		return Balances{}, err
	}
	if !found {
		return Balances{}, nil
	}
	return prev.Balances(), nil
}

// CreateWithOpenings fills missing openings from the previous day and creates the record.
// The previous day is read inside the create transaction, after the date lock.
// Stored openings are not re-carried when an earlier day is inserted or edited later.
func (s *Service) CreateWithOpenings(ctx context.Context, st *Stock, openings Openings) error {
	return s.CreateWith(ctx, st, func(ctx context.Context, st *Stock) error {
		prev, err := s.PreviousBalance(ctx, st.Date)
		if err != nil {
			return fmt.Errorf("carry over openings: %w", err)
		}
		st.ApplyOpenings(openings, prev)
		return nil
	})
}

// UpdateWithOpenings applies changes; supplied openings replace stored ones.
// When the date moves and an opening is not supplied, it is carried over
// from the record preceding the new date.
func (s *Service) UpdateWithOpenings(ctx context.Context, recID id.ID, version int, openings Openings, apply func(st *Stock)) (*Stock, error) {
	return s.Update(ctx, recID, version, func(ctx context.Context, st *Stock) error {
		oldDate := st.Date
		apply(st)

		fallback := Balances{EFB: st.EFBOpening, EFBFiber: st.FiberOpening, Shell: st.ShellOpening}
		if !st.Date.Equal(oldDate) {
			prev, found, err := s.LatestBefore(ctx, st.Date)
			if err != nil {
				return fmt.Errorf("carry over openings: %w", err)
			}
			switch {
			case !found:
				fallback = Balances{}
			case prev.ID != st.ID:
				fallback = prev.Balances()
			}
		}
		st.ApplyOpenings(openings, fallback)
		return nil
	})
}
