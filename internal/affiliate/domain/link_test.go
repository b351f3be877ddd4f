package domain

import (
	"strings"
	"testing"
)

func TestGenerateCode_Format(t *testing.T) {
	// Act
	code := GenerateCode(42, 7)

	// Assert
	if !strings.HasPrefix(code, "AFF-") {
		t.Errorf("expected AFF- prefix, got %q", code)
	}

	if code != strings.ToUpper(code) {
		t.Errorf("expected uppercase code, got %q", code)
	}

	// blogger + product + timestamp in base36, then 6 random characters
	if len(code) < len("AFF-")+8 {
		t.Errorf("code %q is implausibly short", code)
	}
}

func TestNewLink(t *testing.T) {
	// Act
	link, err := NewLink(42, 7, 3, 5, CommissionPercentage)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !link.IsActive {
		t.Error("expected new link to be active")
	}

	if link.AffiliateCode == "" {
		t.Error("expected generated affiliate code")
	}

	if link.Clicks != 0 || link.Conversions != 0 {
		t.Error("expected zeroed counters")
	}
}

func TestNewLink_Validation(t *testing.T) {
	tests := []struct {
		name           string
		bloggerID      uint
		productID      uint
		rate           float64
		commissionType CommissionType
	}{
		{"missing blogger", 0, 7, 5, CommissionPercentage},
		{"missing product", 42, 0, 5, CommissionPercentage},
		{"negative rate", 42, 7, -1, CommissionPercentage},
		{"bad type", 42, 7, 5, CommissionType("tiered")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLink(tt.bloggerID, tt.productID, 3, tt.rate, tt.commissionType); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestCalculateCommission_Percentage(t *testing.T) {
	// Arrange
	link := Link{CommissionRate: 5, CommissionType: CommissionPercentage}

	// Act
	commission := link.CalculateCommission(1000000)

	// Assert
	if commission != 50000 {
		t.Errorf("expected commission 50000, got %f", commission)
	}
}

func TestCalculateCommission_Fixed(t *testing.T) {
	// Arrange
	link := Link{CommissionRate: 25000, CommissionType: CommissionFixed}

	// Act
	commission := link.CalculateCommission(1000000)

	// Assert
	if commission != 25000 {
		t.Errorf("expected commission 25000, got %f", commission)
	}
}

func TestConversionRate(t *testing.T) {
	tests := []struct {
		clicks      int64
		conversions int64
		want        float64
	}{
		{0, 0, 0},
		{100, 0, 0},
		{100, 25, 0.25},
	}

	for _, tt := range tests {
		link := Link{Clicks: tt.clicks, Conversions: tt.conversions}
		if got := link.ConversionRate(); got != tt.want {
			t.Errorf("ConversionRate with %d/%d: expected %f, got %f", tt.conversions, tt.clicks, tt.want, got)
		}
	}
}
