package adapters

import (
	"context"
	"encoding/json"
	"testing"

	"marketplace/internal/fraud/domain"
	ordersdomain "marketplace/internal/orders/domain"
	ordersports "marketplace/internal/orders/ports"
	"marketplace/pkg/logger"
)

// flagRecordingRepository records the advisory fraud patch and fails the test
// on any full-row read or write: the flag races the request path and must
// never touch the fulfillment or payment columns.
type flagRecordingRepository struct {
	t *testing.T

	flaggedOrderID uint
	flaggedStatus  string
	flaggedScore   int
	flaggedPayload []byte
}

func (r *flagRecordingRepository) Create(ctx context.Context, order *ordersdomain.Order) error {
	r.t.Fatal("unexpected Create call")
	return nil
}

func (r *flagRecordingRepository) GetByID(ctx context.Context, id uint) (*ordersdomain.Order, error) {
	r.t.Fatal("flag must not read the full row")
	return nil, nil
}

func (r *flagRecordingRepository) Update(ctx context.Context, order *ordersdomain.Order) error {
	r.t.Fatal("flag must not rewrite the full row")
	return nil
}

func (r *flagRecordingRepository) Delete(ctx context.Context, id uint) error {
	r.t.Fatal("unexpected Delete call")
	return nil
}

func (r *flagRecordingRepository) ListByCustomer(ctx context.Context, customerID uint) ([]*ordersdomain.Order, error) {
	r.t.Fatal("unexpected ListByCustomer call")
	return nil, nil
}

func (r *flagRecordingRepository) AttachAffiliate(ctx context.Context, id, affiliateID uint, code string, commission float64) error {
	r.t.Fatal("unexpected AttachAffiliate call")
	return nil
}

func (r *flagRecordingRepository) SaveCommissions(ctx context.Context, id uint, affiliateCommission, platformCommission float64) error {
	r.t.Fatal("unexpected SaveCommissions call")
	return nil
}

func (r *flagRecordingRepository) FlagFraud(ctx context.Context, id uint, status string, score int, analysis []byte) error {
	r.flaggedOrderID = id
	r.flaggedStatus = status
	r.flaggedScore = score
	r.flaggedPayload = analysis
	return nil
}

// unusedCatalog satisfies the catalog port for paths that never touch it
type unusedCatalog struct {
	t *testing.T
}

func (c *unusedCatalog) GetProduct(ctx context.Context, id uint) (*ordersports.Product, error) {
	c.t.Fatal("unexpected GetProduct call")
	return nil, nil
}

func (c *unusedCatalog) AdjustStock(ctx context.Context, id uint, delta int) (bool, error) {
	c.t.Fatal("unexpected AdjustStock call")
	return false, nil
}

func TestFlagSuspicious_UsesScopedPatch(t *testing.T) {
	// Arrange
	repo := &flagRecordingRepository{t: t}
	log := logger.New("test", "debug", "console")
	adapter := NewOrderAdapter(repo, &unusedCatalog{t: t}, log)
	analysis := &domain.Analysis{
		OrderID:   7,
		RiskScore: 85,
		RiskLevel: domain.RiskLevelHigh,
	}

	// Act
	err := adapter.FlagSuspicious(context.Background(), 7, analysis)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if repo.flaggedOrderID != 7 || repo.flaggedStatus != FraudStatusSuspicious {
		t.Errorf("expected order 7 flagged %s, got %d / %s",
			FraudStatusSuspicious, repo.flaggedOrderID, repo.flaggedStatus)
	}
	if repo.flaggedScore != 85 {
		t.Errorf("expected score 85, got %d", repo.flaggedScore)
	}

	var snapshot domain.Analysis
	if err := json.Unmarshal(repo.flaggedPayload, &snapshot); err != nil {
		t.Fatalf("expected a JSON analysis snapshot, got %v", err)
	}
	if snapshot.RiskScore != 85 || snapshot.RiskLevel != domain.RiskLevelHigh {
		t.Errorf("expected snapshot to carry score 85 / level high, got %d / %s",
			snapshot.RiskScore, snapshot.RiskLevel)
	}
}
