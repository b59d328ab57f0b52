package cpo_record

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"millstock/internal/domain"
	"millstock/internal/domain/quality"
	"millstock/internal/domain/reference"
	"millstock/internal/domain/registers/stock_product"
	"millstock/pkg/logger"
)

// EntityName is used in errors and logs.
const EntityName = "CPO record"

// Repository stores CPO records.
type Repository = domain.RecordRepository[*Record]

// Service manages CPO records.
type Service struct {
	*domain.RecordService[*Record]
	reference *reference.Service
	quality   *quality.Evaluator
}

// NewService creates the service. Tank volumes and quality alerts are derived
// on every create and update.
func NewService(cfg domain.RecordServiceConfig[*Record], ref *reference.Service, qe *quality.Evaluator) *Service {
	cfg.Source = stock_product.SourceCPO
	cfg.EntityName = EntityName
	s := &Service{
		RecordService: domain.NewRecordService(cfg),
		reference:     ref,
		quality:       qe,
	}
	s.Hooks().OnBeforeSave(s.derive)
	return s
}

// Calculate previews tank volumes without storing anything.
func (s *Service) Calculate(ctx context.Context, readings []reference.Reading) (reference.VolumeResult, error) {
	tables, err := s.reference.Tables(ctx)
	if err != nil {
		return reference.VolumeResult{}, err
	}
	return tables.CPOVolume(readings)
}

func (s *Service) derive(ctx context.Context, r *Record) error {
	res, err := s.Calculate(ctx, r.Readings())
	if err != nil {
		return err
	}
	r.ApplyVolumes(res)
	r.QualityAlerts = s.alerts(ctx, r)
	return nil
}

func (s *Service) alerts(ctx context.Context, r *Record) []string {
	alerts := []string{}
	for _, t := range r.Tanks {
		matched, err := s.quality.Evaluate(quality.Sample{
			Tank:        t.Tank,
			LevelCm:     t.LevelCm.InexactFloat64(),
			Temperature: t.Temperature.InexactFloat64(),
			FFA:         toFloat(t.FFA),
			Moisture:    toFloat(t.Moisture),
			Dobi:        toFloat(t.Dobi),
		})
		if err != nil {
			logger.Warn(ctx, "quality rule evaluation failed", "tank", t.Tank, "error", err)
		}
		alerts = append(alerts, matched...)
	}
	if len(alerts) > 0 {
		logger.Info(ctx, "CPO quality alerts raised",
			"date", r.Date.String(),
			"alerts", fmt.Sprint(alerts),
		)
	}
	return alerts
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
