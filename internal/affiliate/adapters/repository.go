package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/affiliate/domain"
	apperrors "marketplace/pkg/errors"
)

// LinkModel is the GORM model for affiliate links (persistence layer)
type LinkModel struct {
	ID         uint `gorm:"primaryKey"`
	BloggerID  uint `gorm:"index;not null"`
	ProductID  uint `gorm:"index;not null"`
	MerchantID uint `gorm:"index"`

	AffiliateCode  string  `gorm:"size:64;uniqueIndex;not null"`
	CommissionRate float64 `gorm:"not null"`
	CommissionType string  `gorm:"size:16;not null"`
	IsActive       bool    `gorm:"not null;default:true"`

	Clicks           int64   `gorm:"not null;default:0"`
	Conversions      int64   `gorm:"not null;default:0"`
	Revenue          float64 `gorm:"not null;default:0"`
	CommissionEarned float64 `gorm:"not null;default:0"`

	PerformanceHistory []byte `gorm:"type:jsonb;default:'[]'"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (LinkModel) TableName() string {
	return "affiliate_links"
}

// PostgresLinkRepository implements LinkRepository using PostgreSQL
type PostgresLinkRepository struct {
	db *gorm.DB
}

// NewPostgresLinkRepository creates a new PostgreSQL link repository
func NewPostgresLinkRepository(db *gorm.DB) *PostgresLinkRepository {
	return &PostgresLinkRepository{db: db}
}

// Migrate runs auto-migration for the link model
func (r *PostgresLinkRepository) Migrate() error {
	return r.db.AutoMigrate(&LinkModel{})
}

// Create creates a new link
func (r *PostgresLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	model, err := linkToModel(link)
	if err != nil {
		return apperrors.NewInternal("failed to encode affiliate link", err)
	}

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to create affiliate link", result.Error)
	}

	link.ID = model.ID
	link.CreatedAt = model.CreatedAt
	link.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByCode retrieves a link by affiliate code
func (r *PostgresLinkRepository) GetByCode(ctx context.Context, code string) (*domain.Link, error) {
	var model LinkModel

	result := r.db.WithContext(ctx).Where("affiliate_code = ?", code).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NewLinkNotFound(code)
		}
		return nil, apperrors.NewInternal("failed to get affiliate link", result.Error)
	}

	return linkToDomain(&model)
}

// RecordClick increments the click counter and appends the performance
// record in one atomic UPDATE. Concurrent clicks never lose counts.
func (r *PostgresLinkRepository) RecordClick(ctx context.Context, code string, record domain.PerformanceRecord) error {
	encoded, err := json.Marshal([]domain.PerformanceRecord{record})
	if err != nil {
		return apperrors.NewInternal("failed to encode performance record", err)
	}

	result := r.db.WithContext(ctx).
		Model(&LinkModel{}).
		Where("affiliate_code = ?", code).
		UpdateColumns(map[string]interface{}{
			"clicks":              gorm.Expr("clicks + 1"),
			"performance_history": gorm.Expr("performance_history || ?::jsonb", string(encoded)),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return apperrors.NewInternal("failed to record click", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewLinkNotFound(code)
	}
	return nil
}

// RecordConversion increments conversion counters and appends the
// performance record in one atomic UPDATE.
func (r *PostgresLinkRepository) RecordConversion(ctx context.Context, code string, amount, commission float64, record domain.PerformanceRecord) error {
	encoded, err := json.Marshal([]domain.PerformanceRecord{record})
	if err != nil {
		return apperrors.NewInternal("failed to encode performance record", err)
	}

	result := r.db.WithContext(ctx).
		Model(&LinkModel{}).
		Where("affiliate_code = ?", code).
		UpdateColumns(map[string]interface{}{
			"conversions":         gorm.Expr("conversions + 1"),
			"revenue":             gorm.Expr("revenue + ?", amount),
			"commission_earned":   gorm.Expr("commission_earned + ?", commission),
			"performance_history": gorm.Expr("performance_history || ?::jsonb", string(encoded)),
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return apperrors.NewInternal("failed to record conversion", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewLinkNotFound(code)
	}
	return nil
}

// linkToModel converts a domain entity to a GORM model
func linkToModel(link *domain.Link) (*LinkModel, error) {
	history := link.PerformanceHistory
	if history == nil {
		history = []domain.PerformanceRecord{}
	}
	encoded, err := json.Marshal(history)
	if err != nil {
		return nil, err
	}

	return &LinkModel{
		ID:                 link.ID,
		BloggerID:          link.BloggerID,
		ProductID:          link.ProductID,
		MerchantID:         link.MerchantID,
		AffiliateCode:      link.AffiliateCode,
		CommissionRate:     link.CommissionRate,
		CommissionType:     string(link.CommissionType),
		IsActive:           link.IsActive,
		Clicks:             link.Clicks,
		Conversions:        link.Conversions,
		Revenue:            link.Revenue,
		CommissionEarned:   link.CommissionEarned,
		PerformanceHistory: encoded,
		CreatedAt:          link.CreatedAt,
		UpdatedAt:          link.UpdatedAt,
	}, nil
}

// linkToDomain converts a GORM model to a domain entity
func linkToDomain(model *LinkModel) (*domain.Link, error) {
	var history []domain.PerformanceRecord
	if len(model.PerformanceHistory) > 0 {
		if err := json.Unmarshal(model.PerformanceHistory, &history); err != nil {
			return nil, apperrors.NewInternal("failed to decode performance history", err)
		}
	}

	return &domain.Link{
		ID:                 model.ID,
		BloggerID:          model.BloggerID,
		ProductID:          model.ProductID,
		MerchantID:         model.MerchantID,
		AffiliateCode:      model.AffiliateCode,
		CommissionRate:     model.CommissionRate,
		CommissionType:     domain.CommissionType(model.CommissionType),
		IsActive:           model.IsActive,
		Clicks:             model.Clicks,
		Conversions:        model.Conversions,
		Revenue:            model.Revenue,
		CommissionEarned:   model.CommissionEarned,
		PerformanceHistory: history,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}, nil
}
