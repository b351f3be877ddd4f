package adapters

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/fraud/domain"
	"marketplace/internal/fraud/ports"
	apperrors "marketplace/pkg/errors"
)

// AnalysisModel is the GORM model for persisted fraud analyses
type AnalysisModel struct {
	ID              uint      `gorm:"primaryKey"`
	OrderID         uint      `gorm:"index;not null"`
	RiskScore       int       `gorm:"not null"`
	RiskLevel       string    `gorm:"size:10;not null;index"`
	RiskFactors     []byte    `gorm:"type:jsonb"`
	Recommendations []byte    `gorm:"type:jsonb"`
	Confidence      int       `gorm:"not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (AnalysisModel) TableName() string {
	return "fraud_analyses"
}

// PostgresAnalysisStore implements AnalysisStore using PostgreSQL
type PostgresAnalysisStore struct {
	db *gorm.DB
}

// NewPostgresAnalysisStore creates a new PostgreSQL analysis store
func NewPostgresAnalysisStore(db *gorm.DB) *PostgresAnalysisStore {
	return &PostgresAnalysisStore{db: db}
}

// Migrate runs auto-migration for the analysis model
func (s *PostgresAnalysisStore) Migrate() error {
	return s.db.AutoMigrate(&AnalysisModel{})
}

// Save persists one analysis
func (s *PostgresAnalysisStore) Save(ctx context.Context, analysis *domain.Analysis) error {
	factors, err := json.Marshal(analysis.RiskFactors)
	if err != nil {
		return apperrors.NewInternal("failed to encode risk factors", err)
	}
	recommendations, err := json.Marshal(analysis.Recommendations)
	if err != nil {
		return apperrors.NewInternal("failed to encode recommendations", err)
	}

	model := AnalysisModel{
		OrderID:         analysis.OrderID,
		RiskScore:       analysis.RiskScore,
		RiskLevel:       string(analysis.RiskLevel),
		RiskFactors:     factors,
		Recommendations: recommendations,
		Confidence:      analysis.Confidence,
		CreatedAt:       analysis.AnalyzedAt,
	}

	result := s.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to save fraud analysis", result.Error)
	}
	return nil
}

// StatsSince aggregates analyses created after the given time
func (s *PostgresAnalysisStore) StatsSince(ctx context.Context, since time.Time) (*ports.Stats, error) {
	var row struct {
		Total        int64
		LowCount     int64
		MediumCount  int64
		HighCount    int64
		AverageScore float64
	}

	err := s.db.WithContext(ctx).
		Model(&AnalysisModel{}).
		Select(
			"COUNT(*) AS total, "+
				"COUNT(*) FILTER (WHERE risk_level = 'low') AS low_count, "+
				"COUNT(*) FILTER (WHERE risk_level = 'medium') AS medium_count, "+
				"COUNT(*) FILTER (WHERE risk_level = 'high') AS high_count, "+
				"COALESCE(AVG(risk_score), 0) AS average_score").
		Where("created_at > ?", since).
		Take(&row).Error
	if err != nil {
		return nil, apperrors.NewInternal("failed to aggregate fraud analyses", err)
	}

	return &ports.Stats{
		Total:        row.Total,
		LowCount:     row.LowCount,
		MediumCount:  row.MediumCount,
		HighCount:    row.HighCount,
		AverageScore: row.AverageScore,
	}, nil
}
