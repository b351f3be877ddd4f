package application

import (
	"context"
	"testing"

	"marketplace/internal/affiliate/domain"
	"marketplace/internal/affiliate/ports"
	"marketplace/pkg/errors"
	"marketplace/pkg/logger"
)

// MockLinkRepository is a mock implementation of LinkRepository
type MockLinkRepository struct {
	links map[string]*domain.Link
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{links: make(map[string]*domain.Link)}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *domain.Link) error {
	link.ID = uint(len(m.links) + 1)
	m.links[link.AffiliateCode] = link
	return nil
}

func (m *MockLinkRepository) GetByCode(ctx context.Context, code string) (*domain.Link, error) {
	link, ok := m.links[code]
	if !ok {
		return nil, domain.NewLinkNotFound(code)
	}
	return link, nil
}

func (m *MockLinkRepository) RecordClick(ctx context.Context, code string, record domain.PerformanceRecord) error {
	link, ok := m.links[code]
	if !ok {
		return domain.NewLinkNotFound(code)
	}
	link.Clicks++
	link.PerformanceHistory = append(link.PerformanceHistory, record)
	return nil
}

func (m *MockLinkRepository) RecordConversion(ctx context.Context, code string, amount, commission float64, record domain.PerformanceRecord) error {
	link, ok := m.links[code]
	if !ok {
		return domain.NewLinkNotFound(code)
	}
	link.Conversions++
	link.Revenue += amount
	link.CommissionEarned += commission
	link.PerformanceHistory = append(link.PerformanceHistory, record)
	return nil
}

// MockGamification records awarded points and achievements
type MockGamification struct {
	points       int
	achievements []string
}

func (m *MockGamification) AwardExperiencePoints(ctx context.Context, bloggerID uint, points int, reason string) {
	m.points += points
}

func (m *MockGamification) AwardAchievement(ctx context.Context, bloggerID uint, key string) {
	m.achievements = append(m.achievements, key)
}

// MockOrders is a mock implementation of the commission-side order surface.
// saveFailures makes the next N commission writes fail, mimicking a transient
// database error.
type MockOrders struct {
	orders       map[uint]*ports.CommissionOrder
	attachments  int
	saveFailures int
}

func NewMockOrders(orders ...*ports.CommissionOrder) *MockOrders {
	m := &MockOrders{orders: make(map[uint]*ports.CommissionOrder)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *MockOrders) GetCommissionOrder(ctx context.Context, orderID uint) (*ports.CommissionOrder, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, errors.NewNotFound("order", orderID)
	}
	copied := *order
	return &copied, nil
}

func (m *MockOrders) AttachAffiliate(ctx context.Context, orderID, affiliateID uint, code string, commission float64) error {
	order, ok := m.orders[orderID]
	if !ok {
		return errors.NewNotFound("order", orderID)
	}
	order.AffiliateID = affiliateID
	order.AffiliateCommission = commission
	m.attachments++
	return nil
}

func (m *MockOrders) SaveCommissions(ctx context.Context, orderID uint, affiliateCommission, platformCommission float64) error {
	if m.saveFailures > 0 {
		m.saveFailures--
		return errors.NewInternal("commission write failed", nil)
	}
	order, ok := m.orders[orderID]
	if !ok {
		return errors.NewNotFound("order", orderID)
	}
	order.AffiliateCommission = affiliateCommission
	order.PlatformCommission = platformCommission
	order.CommissionComputed = true
	return nil
}

// MockNotifier records notification kinds
type MockNotifier struct {
	kinds []string
}

func (m *MockNotifier) Notify(ctx context.Context, recipientID uint, kind, title, message string, data map[string]interface{}) {
	m.kinds = append(m.kinds, kind)
}

func newUseCase(repo *MockLinkRepository, orders *MockOrders, gamification *MockGamification) *AffiliateUseCase {
	log := logger.New("test", "debug", "console")
	return NewAffiliateUseCase(repo, orders, gamification, &MockNotifier{}, log, 0.05, 0.03)
}

func TestCreateLink(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	useCase := newUseCase(repo, NewMockOrders(), &MockGamification{})

	// Act
	link, err := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		MerchantID:     3,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := repo.GetByCode(context.Background(), link.AffiliateCode); err != nil {
		t.Errorf("expected link persisted under its code, got %v", err)
	}
}

func TestTrackClick(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	gamification := &MockGamification{}
	useCase := newUseCase(repo, NewMockOrders(), gamification)
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})

	// Act
	err := useCase.TrackClick(context.Background(), link.AffiliateCode)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stored, _ := repo.GetByCode(context.Background(), link.AffiliateCode)
	if stored.Clicks != 1 {
		t.Errorf("expected 1 click, got %d", stored.Clicks)
	}

	if gamification.points != 1 {
		t.Errorf("expected 1 experience point, got %d", gamification.points)
	}
}

func TestTrackClick_InactiveLink(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	useCase := newUseCase(repo, NewMockOrders(), &MockGamification{})
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})
	link.IsActive = false

	// Act
	err := useCase.TrackClick(context.Background(), link.AffiliateCode)

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, errors.CodeConflict) {
		t.Errorf("expected conflict error, got %v", err)
	}
}

func TestTrackClick_UnknownCode(t *testing.T) {
	// Arrange
	useCase := newUseCase(NewMockLinkRepository(), NewMockOrders(), &MockGamification{})

	// Act
	err := useCase.TrackClick(context.Background(), "AFF-UNKNOWN")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, errors.CodeNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestTrackConversion_Percentage(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	orders := NewMockOrders(&ports.CommissionOrder{ID: 1, TotalAmount: 1000000})
	gamification := &MockGamification{}
	useCase := newUseCase(repo, orders, gamification)
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})

	// Act
	commission, err := useCase.TrackConversion(context.Background(), TrackConversionInput{
		Code:    link.AffiliateCode,
		OrderID: 1,
		Amount:  1000000,
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if commission != 50000 {
		t.Errorf("expected commission 50000, got %f", commission)
	}

	stored, _ := repo.GetByCode(context.Background(), link.AffiliateCode)
	if stored.Conversions != 1 {
		t.Errorf("expected 1 conversion, got %d", stored.Conversions)
	}
	if stored.Revenue != 1000000 {
		t.Errorf("expected revenue 1000000, got %f", stored.Revenue)
	}
	if stored.CommissionEarned != 50000 {
		t.Errorf("expected commission earned 50000, got %f", stored.CommissionEarned)
	}

	if orders.attachments != 1 {
		t.Errorf("expected 1 order attribution, got %d", orders.attachments)
	}

	if gamification.points != 10 {
		t.Errorf("expected 10 experience points, got %d", gamification.points)
	}
}

func TestTrackConversion_FirstConversionAchievement(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	orders := NewMockOrders(
		&ports.CommissionOrder{ID: 1, TotalAmount: 100000},
		&ports.CommissionOrder{ID: 2, TotalAmount: 100000},
	)
	gamification := &MockGamification{}
	useCase := newUseCase(repo, orders, gamification)
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})

	// Act: two conversions, achievement only for the first
	useCase.TrackConversion(context.Background(), TrackConversionInput{Code: link.AffiliateCode, OrderID: 1, Amount: 100000})
	useCase.TrackConversion(context.Background(), TrackConversionInput{Code: link.AffiliateCode, OrderID: 2, Amount: 100000})

	// Assert
	if len(gamification.achievements) != 1 || gamification.achievements[0] != "first_conversion" {
		t.Errorf("expected a single first_conversion achievement, got %v", gamification.achievements)
	}
}

func TestTrackConversion_RedeliveredEventNotDoubleCounted(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	orders := NewMockOrders(&ports.CommissionOrder{ID: 1, TotalAmount: 1000000})
	gamification := &MockGamification{}
	useCase := newUseCase(repo, orders, gamification)
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})
	input := TrackConversionInput{Code: link.AffiliateCode, OrderID: 1, Amount: 1000000}
	if _, err := useCase.TrackConversion(context.Background(), input); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}

	// Act: the same event delivered a second time
	commission, err := useCase.TrackConversion(context.Background(), input)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if commission != 50000 {
		t.Errorf("expected the original commission 50000, got %f", commission)
	}

	stored, _ := repo.GetByCode(context.Background(), link.AffiliateCode)
	if stored.Conversions != 1 {
		t.Errorf("expected 1 conversion, got %d", stored.Conversions)
	}
	if stored.CommissionEarned != 50000 {
		t.Errorf("expected commission earned 50000, got %f", stored.CommissionEarned)
	}

	if orders.attachments != 1 {
		t.Errorf("expected 1 order attribution, got %d", orders.attachments)
	}

	if gamification.points != 10 {
		t.Errorf("expected 10 experience points, got %d", gamification.points)
	}
}

func TestTrackConversion_RetryAfterCommissionWriteFailure(t *testing.T) {
	// Arrange: the commission write fails once, the event is redelivered
	repo := NewMockLinkRepository()
	orders := NewMockOrders(&ports.CommissionOrder{ID: 1, TotalAmount: 1000000})
	orders.saveFailures = 1
	useCase := newUseCase(repo, orders, &MockGamification{})
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 5,
		CommissionType: domain.CommissionPercentage,
	})
	input := TrackConversionInput{Code: link.AffiliateCode, OrderID: 1, Amount: 1000000}

	// Act: first delivery credits the conversion but fails on the
	// commission write, the redelivery runs both steps again
	if _, err := useCase.TrackConversion(context.Background(), input); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	if err := useCase.CalculateCommissions(context.Background(), 1); err == nil {
		t.Fatal("expected the first commission write to fail")
	}
	if _, err := useCase.TrackConversion(context.Background(), input); err != nil {
		t.Fatalf("redelivered conversion failed: %v", err)
	}
	if err := useCase.CalculateCommissions(context.Background(), 1); err != nil {
		t.Fatalf("expected no error on retry, got %v", err)
	}

	// Assert: counters credited exactly once, commissions finalized
	stored, _ := repo.GetByCode(context.Background(), link.AffiliateCode)
	if stored.Conversions != 1 {
		t.Errorf("expected 1 conversion, got %d", stored.Conversions)
	}
	if stored.CommissionEarned != 50000 {
		t.Errorf("expected commission earned 50000, got %f", stored.CommissionEarned)
	}

	order := orders.orders[1]
	if order.AffiliateCommission != 50000 {
		t.Errorf("expected affiliate commission 50000, got %f", order.AffiliateCommission)
	}
	if order.PlatformCommission != 30000 {
		t.Errorf("expected platform commission 30000, got %f", order.PlatformCommission)
	}
	if !order.CommissionComputed {
		t.Error("expected order marked computed")
	}
}

func TestCalculateCommissions_DefaultRates(t *testing.T) {
	// Arrange: affiliate attributed but commission not yet set
	orders := NewMockOrders(&ports.CommissionOrder{
		ID:          1,
		AffiliateID: 42,
		TotalAmount: 1000000,
	})
	useCase := newUseCase(NewMockLinkRepository(), orders, &MockGamification{})

	// Act
	err := useCase.CalculateCommissions(context.Background(), 1)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := orders.orders[1]
	if order.AffiliateCommission != 50000 {
		t.Errorf("expected affiliate commission 50000, got %f", order.AffiliateCommission)
	}
	if order.PlatformCommission != 30000 {
		t.Errorf("expected platform commission 30000, got %f", order.PlatformCommission)
	}
	if !order.CommissionComputed {
		t.Error("expected order marked computed")
	}
}

func TestCalculateCommissions_NoAffiliate(t *testing.T) {
	// Arrange
	orders := NewMockOrders(&ports.CommissionOrder{ID: 1, TotalAmount: 1000000})
	useCase := newUseCase(NewMockLinkRepository(), orders, &MockGamification{})

	// Act
	err := useCase.CalculateCommissions(context.Background(), 1)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := orders.orders[1]
	if order.AffiliateCommission != 0 {
		t.Errorf("expected no affiliate commission, got %f", order.AffiliateCommission)
	}
	if order.PlatformCommission != 30000 {
		t.Errorf("expected platform commission 30000, got %f", order.PlatformCommission)
	}
}

func TestCalculateCommissions_Idempotent(t *testing.T) {
	// Arrange
	orders := NewMockOrders(&ports.CommissionOrder{
		ID:          1,
		AffiliateID: 42,
		TotalAmount: 1000000,
	})
	useCase := newUseCase(NewMockLinkRepository(), orders, &MockGamification{})
	if err := useCase.CalculateCommissions(context.Background(), 1); err != nil {
		t.Fatalf("first calculation failed: %v", err)
	}

	// Tamper with the total: a recomputation would change the amounts
	orders.orders[1].TotalAmount = 9999999

	// Act
	err := useCase.CalculateCommissions(context.Background(), 1)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	order := orders.orders[1]
	if order.AffiliateCommission != 50000 || order.PlatformCommission != 30000 {
		t.Errorf("expected commissions unchanged on recomputation, got %f / %f",
			order.AffiliateCommission, order.PlatformCommission)
	}
}

func TestGetLinkStats(t *testing.T) {
	// Arrange
	repo := NewMockLinkRepository()
	orders := NewMockOrders(&ports.CommissionOrder{ID: 1, TotalAmount: 500000})
	useCase := newUseCase(repo, orders, &MockGamification{})
	link, _ := useCase.CreateLink(context.Background(), CreateLinkInput{
		BloggerID:      42,
		ProductID:      7,
		CommissionRate: 10,
		CommissionType: domain.CommissionPercentage,
	})

	for i := 0; i < 4; i++ {
		useCase.TrackClick(context.Background(), link.AffiliateCode)
	}
	useCase.TrackConversion(context.Background(), TrackConversionInput{Code: link.AffiliateCode, OrderID: 1, Amount: 500000})

	// Act
	stats, err := useCase.GetLinkStats(context.Background(), link.AffiliateCode)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stats.Clicks != 4 || stats.Conversions != 1 {
		t.Errorf("expected 4 clicks and 1 conversion, got %d / %d", stats.Clicks, stats.Conversions)
	}

	if stats.Revenue != 500000 || stats.CommissionEarned != 50000 {
		t.Errorf("expected revenue 500000 and commission 50000, got %f / %f", stats.Revenue, stats.CommissionEarned)
	}

	if stats.ConversionRate != 0.25 {
		t.Errorf("expected conversion rate 0.25, got %f", stats.ConversionRate)
	}
}
