package application

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/affiliate/domain"
	"marketplace/internal/affiliate/ports"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"

	"go.uber.org/zap"
)

// Experience point awards and the first-conversion achievement key
const (
	clickExperiencePoints      = 1
	conversionExperiencePoints = 10
	firstConversionAchievement = "first_conversion"
)

// AffiliateUseCase handles affiliate links, click/conversion tracking and
// commission computation for finalized orders.
type AffiliateUseCase struct {
	repo         ports.LinkRepository
	orders       ports.Orders
	gamification ports.Gamification
	notifier     ports.Notifier
	log          *logger.Logger

	defaultAffiliateRate float64 // applied to orders without a converting link
	platformRate         float64
}

// NewAffiliateUseCase creates a new affiliate use case
func NewAffiliateUseCase(
	repo ports.LinkRepository,
	orders ports.Orders,
	gamification ports.Gamification,
	notifier ports.Notifier,
	log *logger.Logger,
	defaultAffiliateRate, platformRate float64,
) *AffiliateUseCase {
	return &AffiliateUseCase{
		repo:                 repo,
		orders:               orders,
		gamification:         gamification,
		notifier:             notifier,
		log:                  log,
		defaultAffiliateRate: defaultAffiliateRate,
		platformRate:         platformRate,
	}
}

// CreateLinkInput represents the input for creating an affiliate link
type CreateLinkInput struct {
	BloggerID      uint
	ProductID      uint
	MerchantID     uint
	CommissionRate float64
	CommissionType domain.CommissionType
}

// CreateLink generates a coded link for a blogger-product pair
func (uc *AffiliateUseCase) CreateLink(ctx context.Context, input CreateLinkInput) (*domain.Link, error) {
	link, err := domain.NewLink(input.BloggerID, input.ProductID, input.MerchantID, input.CommissionRate, input.CommissionType)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Create(ctx, link); err != nil {
		return nil, errors.NewInternal("failed to create affiliate link", err)
	}

	uc.log.WithContext(ctx).Info("affiliate link created",
		zap.Uint("blogger_id", link.BloggerID),
		zap.Uint("product_id", link.ProductID),
		zap.String("affiliate_code", link.AffiliateCode),
	)

	return link, nil
}

// TrackClick registers a click on an active link and awards the blogger a
// single experience point
func (uc *AffiliateUseCase) TrackClick(ctx context.Context, code string) error {
	link, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if !link.IsActive {
		return domain.NewLinkInactive(code)
	}

	record := domain.PerformanceRecord{
		Type:      "click",
		Timestamp: time.Now(),
	}
	if err := uc.repo.RecordClick(ctx, code, record); err != nil {
		return errors.NewInternal("failed to record click", err)
	}

	uc.gamification.AwardExperiencePoints(ctx, link.BloggerID, clickExperiencePoints, "affiliate_click")

	uc.log.WithContext(ctx).Debug("affiliate click tracked",
		zap.String("affiliate_code", code),
		zap.Uint("blogger_id", link.BloggerID),
	)

	return nil
}

// TrackConversionInput represents the input for recording a conversion
type TrackConversionInput struct {
	Code    string
	OrderID uint
	Amount  float64
}

// TrackConversion credits a conversion to the link, patches the order with
// the attribution and rewards the blogger. Idempotent per order: the order's
// attribution is the marker, a redelivered event never credits twice.
func (uc *AffiliateUseCase) TrackConversion(ctx context.Context, input TrackConversionInput) (float64, error) {
	link, err := uc.repo.GetByCode(ctx, input.Code)
	if err != nil {
		return 0, err
	}
	if !link.IsActive {
		return 0, domain.NewLinkInactive(input.Code)
	}

	order, err := uc.orders.GetCommissionOrder(ctx, input.OrderID)
	if err != nil {
		return 0, err
	}
	if order.AffiliateID != 0 {
		uc.log.WithContext(ctx).Warn("conversion already credited",
			zap.Uint("order_id", input.OrderID),
			zap.String("affiliate_code", input.Code),
		)
		return order.AffiliateCommission, nil
	}

	commission := link.CalculateCommission(input.Amount)

	// Attribution first: once the marker is written, a retry of a failed
	// counter increment cannot double-count.
	if err := uc.orders.AttachAffiliate(ctx, input.OrderID, link.BloggerID, link.AffiliateCode, commission); err != nil {
		return 0, errors.Wrap(err, "failed to attach affiliate to order")
	}

	record := domain.PerformanceRecord{
		Type:       "conversion",
		OrderID:    input.OrderID,
		Amount:     input.Amount,
		Commission: commission,
		Timestamp:  time.Now(),
	}
	if err := uc.repo.RecordConversion(ctx, input.Code, input.Amount, commission, record); err != nil {
		return 0, errors.NewInternal("failed to record conversion", err)
	}

	uc.gamification.AwardExperiencePoints(ctx, link.BloggerID, conversionExperiencePoints, "affiliate_conversion")
	if link.Conversions == 0 {
		uc.gamification.AwardAchievement(ctx, link.BloggerID, firstConversionAchievement)
	}

	uc.notifier.Notify(ctx, link.BloggerID, "affiliate_conversion",
		"Conversion earned",
		fmt.Sprintf("Your link %s earned a commission of %.2f", link.AffiliateCode, commission),
		map[string]interface{}{"order_id": input.OrderID, "commission": commission},
	)

	uc.log.WithContext(ctx).Info("affiliate conversion tracked",
		zap.String("affiliate_code", input.Code),
		zap.Uint("order_id", input.OrderID),
		zap.Float64("amount", input.Amount),
		zap.Float64("commission", commission),
	)

	return commission, nil
}

// CalculateCommissions finalizes the order's commission amounts. Idempotent:
// a computed order is never touched again, the flag is explicit rather than
// inferred from zero values.
func (uc *AffiliateUseCase) CalculateCommissions(ctx context.Context, orderID uint) error {
	order, err := uc.orders.GetCommissionOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.CommissionComputed {
		return nil
	}

	affiliateCommission := order.AffiliateCommission
	if order.AffiliateID != 0 && affiliateCommission == 0 {
		affiliateCommission = order.TotalAmount * uc.defaultAffiliateRate
	}

	platformCommission := order.PlatformCommission
	if platformCommission == 0 {
		platformCommission = order.TotalAmount * uc.platformRate
	}

	if err := uc.orders.SaveCommissions(ctx, orderID, affiliateCommission, platformCommission); err != nil {
		return errors.NewInternal("failed to save commissions", err)
	}

	uc.log.WithContext(ctx).Info("commissions calculated",
		zap.Uint("order_id", orderID),
		zap.Float64("affiliate_commission", affiliateCommission),
		zap.Float64("platform_commission", platformCommission),
	)

	return nil
}

// LinkStats is the read model for a link's performance
type LinkStats struct {
	AffiliateCode    string
	Clicks           int64
	Conversions      int64
	Revenue          float64
	CommissionEarned float64
	ConversionRate   float64
}

// GetLinkStats returns cumulative counters for a link
func (uc *AffiliateUseCase) GetLinkStats(ctx context.Context, code string) (*LinkStats, error) {
	link, err := uc.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	return &LinkStats{
		AffiliateCode:    link.AffiliateCode,
		Clicks:           link.Clicks,
		Conversions:      link.Conversions,
		Revenue:          link.Revenue,
		CommissionEarned: link.CommissionEarned,
		ConversionRate:   link.ConversionRate(),
	}, nil
}
