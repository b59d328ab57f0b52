// Package erp_repo reads sales and fruit intake figures from the ERP databases.
// Both connections are optional and read-only.
package erp_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"millstock/internal/core/apperror"
	"millstock/internal/core/types"
	"millstock/internal/domain/production"
	"millstock/internal/infrastructure/storage/postgres"
	"millstock/pkg/logger"
)

// GoodGrade is the intake grade counted as processable fruit.
const GoodGrade = "GOOD"

var builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// SalesPlanRepo sums dispatched quantities from so_plan.
type SalesPlanRepo struct {
	pool *postgres.Pool
}

var _ production.SalesSource = (*SalesPlanRepo)(nil)

// NewSalesPlanRepo creates the repository; a nil pool yields zero figures.
func NewSalesPlanRepo(pool *postgres.Pool) *SalesPlanRepo {
	return &SalesPlanRepo{pool: pool}
}

// SalesQuery builds the kilogram total of product on date.
func SalesQuery(date types.Date, product string) (string, []any, error) {
	return builder.
		Select("COALESCE(SUM(quantity_kg), 0)").
		From("so_plan").
		Where(squirrel.Eq{"plan_date": date, "product_code": product}).
		ToSql()
}

// SalesKg returns the kilograms of product sold on date.
func (r *SalesPlanRepo) SalesKg(ctx context.Context, date types.Date, product string) (decimal.Decimal, error) {
	if r.pool == nil {
		logger.Warn(ctx, "ERP sales connection not configured, using zero sales",
			"date", date.String(), "product", product)
		return decimal.Zero, nil
	}
	sql, args, err := SalesQuery(date, product)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build sales query: %w", err)
	}
	return sumQuery(ctx, r.pool, sql, args)
}

// IntakeRepo sums good fruit weight from productions.
type IntakeRepo struct {
	pool *postgres.Pool
}

var _ production.IntakeSource = (*IntakeRepo)(nil)

// NewIntakeRepo creates the repository; a nil pool yields zero figures.
func NewIntakeRepo(pool *postgres.Pool) *IntakeRepo {
	return &IntakeRepo{pool: pool}
}

// IntakeQuery builds the good-grade netto kilogram total of date.
func IntakeQuery(date types.Date) (string, []any, error) {
	return builder.
		Select("COALESCE(SUM(netto_kg), 0)").
		From("productions").
		Where(squirrel.Eq{"production_date": date, "grade": GoodGrade}).
		ToSql()
}

// GoodFFBKg returns the kilograms of good fresh fruit bunches received on date.
func (r *IntakeRepo) GoodFFBKg(ctx context.Context, date types.Date) (decimal.Decimal, error) {
	if r.pool == nil {
		logger.Warn(ctx, "ERP production connection not configured, using zero intake",
			"date", date.String())
		return decimal.Zero, nil
	}
	sql, args, err := IntakeQuery(date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build intake query: %w", err)
	}
	return sumQuery(ctx, r.pool, sql, args)
}

func sumQuery(ctx context.Context, pool *postgres.Pool, sql string, args []any) (decimal.Decimal, error) {
	var total decimal.Decimal
	if err := pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, apperror.NewUnavailable("ERP", err)
	}
	return total, nil
}
