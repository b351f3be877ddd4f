package application

import (
	"context"
	"time"

	"marketplace/internal/fraud/domain"
	"marketplace/internal/fraud/ports"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"

	"go.uber.org/zap"
)

// FraudUseCase scores created orders against behavioral, payment and device
// heuristics. Scoring is advisory: a high-risk order is flagged for review,
// never blocked.
type FraudUseCase struct {
	orders  ports.Orders
	signals ports.SignalSource
	store   ports.AnalysisStore
	log     *logger.Logger
}

// NewFraudUseCase creates a new fraud use case
func NewFraudUseCase(
	orders ports.Orders,
	signals ports.SignalSource,
	store ports.AnalysisStore,
	log *logger.Logger,
) *FraudUseCase {
	return &FraudUseCase{
		orders:  orders,
		signals: signals,
		store:   store,
		log:     log,
	}
}

// AnalyzeOrder scores one order and persists the analysis. On high risk the
// order is patched with the advisory flag.
func (uc *FraudUseCase) AnalyzeOrder(ctx context.Context, orderID uint) (*domain.Analysis, error) {
	facts, err := uc.orders.GetFacts(ctx, orderID)
	if err != nil {
		return nil, err
	}

	signals, err := uc.signals.Collect(ctx, facts.CustomerID, facts.ClientIP, facts.UserAgent, facts.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "failed to collect fraud signals")
	}

	analysis := domain.Evaluate(*facts, *signals)

	if err := uc.store.Save(ctx, &analysis); err != nil {
		return nil, errors.NewInternal("failed to save fraud analysis", err)
	}

	if analysis.RiskLevel == domain.RiskLevelHigh {
		if err := uc.orders.FlagSuspicious(ctx, orderID, &analysis); err != nil {
			// Advisory: the analysis stands even if the patch fails
			uc.log.WithContext(ctx).Error("failed to flag suspicious order",
				zap.Error(err),
				zap.Uint("order_id", orderID),
			)
		}
	}

	uc.log.WithContext(ctx).Info("order analyzed",
		zap.Uint("order_id", orderID),
		zap.Int("risk_score", analysis.RiskScore),
		zap.String("risk_level", string(analysis.RiskLevel)),
		zap.Int("factors", len(analysis.RiskFactors)),
	)

	return &analysis, nil
}

// FraudStats is the aggregate view over a trailing window
type FraudStats struct {
	Days             int     `json:"days"`
	TotalAnalyzed    int64   `json:"total_analyzed"`
	LowCount         int64   `json:"low_count"`
	MediumCount      int64   `json:"medium_count"`
	HighCount        int64   `json:"high_count"`
	LowPercentage    float64 `json:"low_percentage"`
	MediumPercentage float64 `json:"medium_percentage"`
	HighPercentage   float64 `json:"high_percentage"`
	AverageRiskScore float64 `json:"average_risk_score"`
}

// GetFraudStats aggregates analyzed orders over the trailing window
func (uc *FraudUseCase) GetFraudStats(ctx context.Context, days int) (*FraudStats, error) {
	if days <= 0 {
		return nil, errors.NewValidation("days must be greater than 0", nil)
	}

	since := time.Now().AddDate(0, 0, -days)
	stats, err := uc.store.StatsSince(ctx, since)
	if err != nil {
		return nil, errors.NewInternal("failed to aggregate fraud stats", err)
	}

	result := &FraudStats{
		Days:             days,
		TotalAnalyzed:    stats.Total,
		LowCount:         stats.LowCount,
		MediumCount:      stats.MediumCount,
		HighCount:        stats.HighCount,
		AverageRiskScore: stats.AverageScore,
	}
	if stats.Total > 0 {
		total := float64(stats.Total)
		result.LowPercentage = float64(stats.LowCount) / total * 100
		result.MediumPercentage = float64(stats.MediumCount) / total * 100
		result.HighPercentage = float64(stats.HighCount) / total * 100
	}

	return result, nil
}
