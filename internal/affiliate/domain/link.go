package domain

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// CommissionType determines how a link's rate is applied
type CommissionType string

const (
	// CommissionPercentage applies rate as a percentage of the conversion amount
	CommissionPercentage CommissionType = "percentage"
	// CommissionFixed pays a flat rate per conversion
	CommissionFixed CommissionType = "fixed"
)

// Valid reports whether the value belongs to the enum
func (t CommissionType) Valid() bool {
	return t == CommissionPercentage || t == CommissionFixed
}

// PerformanceRecord is one entry of the append-only link performance history
type PerformanceRecord struct {
	Type       string    `json:"type"` // click | conversion
	OrderID    uint      `json:"order_id,omitempty"`
	Amount     float64   `json:"amount,omitempty"`
	Commission float64   `json:"commission,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Link is a blogger's affiliate referral link for a product
type Link struct {
	ID         uint
	BloggerID  uint
	ProductID  uint
	MerchantID uint

	AffiliateCode  string
	CommissionRate float64
	CommissionType CommissionType
	IsActive       bool

	Clicks           int64
	Conversions      int64
	Revenue          float64
	CommissionEarned float64

	PerformanceHistory []PerformanceRecord

	CreatedAt time.Time
	UpdatedAt time.Time
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode derives a unique affiliate code from the blogger, the product
// and the current time, with a 6-character random suffix.
func GenerateCode(bloggerID, productID uint) string {
	var suffix strings.Builder
	for i := 0; i < 6; i++ {
		suffix.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}

	return "AFF-" + strings.ToUpper(fmt.Sprintf("%s%s%s%s",
		strconv.FormatUint(uint64(bloggerID), 36),
		strconv.FormatUint(uint64(productID), 36),
		strconv.FormatInt(time.Now().UnixMilli(), 36),
		suffix.String(),
	))
}

// NewLink creates an active link with a generated code
func NewLink(bloggerID, productID, merchantID uint, rate float64, commissionType CommissionType) (*Link, error) {
	if bloggerID == 0 {
		return nil, ErrBloggerIDRequired
	}
	if productID == 0 {
		return nil, ErrProductIDRequired
	}
	if rate < 0 {
		return nil, ErrNegativeRate
	}
	if !commissionType.Valid() {
		return nil, ErrInvalidCommissionType
	}

	now := time.Now()
	return &Link{
		BloggerID:      bloggerID,
		ProductID:      productID,
		MerchantID:     merchantID,
		AffiliateCode:  GenerateCode(bloggerID, productID),
		CommissionRate: rate,
		CommissionType: commissionType,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CalculateCommission returns the commission owed for a conversion amount
func (l *Link) CalculateCommission(amount float64) float64 {
	switch l.CommissionType {
	case CommissionPercentage:
		return amount * l.CommissionRate / 100
	case CommissionFixed:
		return l.CommissionRate
	default:
		return 0
	}
}

// ConversionRate returns conversions per click, 0 when there are no clicks
func (l *Link) ConversionRate() float64 {
	if l.Clicks == 0 {
		return 0
	}
	return float64(l.Conversions) / float64(l.Clicks)
}
