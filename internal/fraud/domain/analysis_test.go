package domain

import (
	"testing"
	"time"
)

func cleanSignals(accountAge time.Duration, orderedAt time.Time) Signals {
	return Signals{
		AccountCreatedAt: orderedAt.Add(-accountAge),
	}
}

func TestEvaluate_NewAccountHighValue(t *testing.T) {
	// Arrange
	now := time.Now()
	facts := OrderFacts{
		OrderID:     1,
		CustomerID:  1,
		TotalAmount: 11_000_000,
		ItemCount:   1,
		CreatedAt:   now,
	}
	signals := cleanSignals(2*24*time.Hour, now)

	// Act
	analysis := Evaluate(facts, signals)

	// Assert: NEW_USER (10) + HIGH_VALUE_ORDER (15)
	if analysis.RiskScore != 25 {
		t.Errorf("expected score 25, got %d", analysis.RiskScore)
	}

	if analysis.RiskLevel != RiskLevelLow {
		t.Errorf("expected level low, got %s", analysis.RiskLevel)
	}

	if analysis.Confidence != 45 {
		t.Errorf("expected confidence 45, got %d", analysis.Confidence)
	}

	if len(analysis.RiskFactors) != 2 {
		t.Errorf("expected 2 factors, got %+v", analysis.RiskFactors)
	}
}

func TestEvaluate_CleanOrder(t *testing.T) {
	// Arrange
	now := time.Now()
	facts := OrderFacts{
		OrderID:     1,
		TotalAmount: 100000,
		ItemCount:   2,
		CreatedAt:   now,
	}
	signals := cleanSignals(365*24*time.Hour, now)

	// Act
	analysis := Evaluate(facts, signals)

	// Assert
	if analysis.RiskScore != 0 {
		t.Errorf("expected score 0, got %d", analysis.RiskScore)
	}

	if analysis.RiskLevel != RiskLevelLow {
		t.Errorf("expected level low, got %s", analysis.RiskLevel)
	}

	if len(analysis.Recommendations) != 1 || analysis.Recommendations[0] != "No action required" {
		t.Errorf("expected the no-action recommendation, got %v", analysis.Recommendations)
	}
}

func TestEvaluate_ScoreCappedAt100(t *testing.T) {
	// Arrange: trigger every factor; raw sum is 160
	now := time.Now()
	cart := now.Add(-5 * time.Second)
	facts := OrderFacts{
		OrderID:            1,
		TotalAmount:        20_000_000,
		ItemCount:          20,
		DistinctCategories: 8,
		UserAgent:          "SuspiciousVPN/1.0",
		CreatedAt:          now,
		CartCreatedAt:      &cart,
	}
	signals := Signals{
		AccountCreatedAt:        now.Add(-time.Hour),
		AccountsSharingIP:       5,
		OrdersLast24h:           10,
		FailedPaymentsLast24h:   4,
		PaymentMethodsLast7d:    5,
		OrdersWithSameUserAgent: 15,
	}

	// Act
	analysis := Evaluate(facts, signals)

	// Assert
	if analysis.RiskScore != 100 {
		t.Errorf("expected capped score 100, got %d", analysis.RiskScore)
	}

	if analysis.RiskLevel != RiskLevelHigh {
		t.Errorf("expected level high, got %s", analysis.RiskLevel)
	}

	if analysis.Confidence != 100 {
		t.Errorf("expected capped confidence 100, got %d", analysis.Confidence)
	}

	if len(analysis.RiskFactors) != 10 {
		t.Errorf("expected all 10 factors, got %d", len(analysis.RiskFactors))
	}
}

func TestEvaluate_LevelBoundaries(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		facts   OrderFacts
		signals Signals
		score   int
		level   RiskLevel
	}{
		{
			// MULTIPLE_ACCOUNTS (25) + HIGH_VALUE_ORDER (15) = 40
			name:    "medium starts at 40",
			facts:   OrderFacts{TotalAmount: 11_000_000, CreatedAt: now},
			signals: Signals{AccountCreatedAt: now.Add(-30 * 24 * time.Hour), AccountsSharingIP: 3},
			score:   40,
			level:   RiskLevelMedium,
		},
		{
			// MULTIPLE_ACCOUNTS (25) + RAPID_ORDERS (20) + HIGH_VALUE_ORDER (15) +
			// NEW_USER (10) = 70
			name:  "high starts at 70",
			facts: OrderFacts{TotalAmount: 11_000_000, CreatedAt: now},
			signals: Signals{
				AccountCreatedAt:  now.Add(-24 * time.Hour),
				AccountsSharingIP: 3,
				OrdersLast24h:     6,
			},
			score: 70,
			level: RiskLevelHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Evaluate(tt.facts, tt.signals)
			if analysis.RiskScore != tt.score {
				t.Errorf("expected score %d, got %d", tt.score, analysis.RiskScore)
			}
			if analysis.RiskLevel != tt.level {
				t.Errorf("expected level %s, got %s", tt.level, analysis.RiskLevel)
			}
		})
	}
}

func TestEvaluate_UnusualCombinationNeedsBothLimits(t *testing.T) {
	// Arrange: many categories but few items must not trigger
	now := time.Now()
	facts := OrderFacts{
		TotalAmount:        100000,
		ItemCount:          6,
		DistinctCategories: 8,
		CreatedAt:          now,
	}
	signals := cleanSignals(365*24*time.Hour, now)

	// Act
	analysis := Evaluate(facts, signals)

	// Assert
	if analysis.RiskScore != 0 {
		t.Errorf("expected score 0, got %d (factors %+v)", analysis.RiskScore, analysis.RiskFactors)
	}
}

func TestSuspiciousUserAgent(t *testing.T) {
	tests := []struct {
		userAgent string
		want      bool
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64)", false},
		{"SuperVPN client 2.1", true},
		{"AnonProxy/3.1", true},
		{"Tor Browser", true},
		{"Mozilla/5.0 (Linux; Android 14; Motorola Edge 50)", false},
		{"uptime-monitor/1.0", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := suspiciousUserAgent(tt.userAgent); got != tt.want {
			t.Errorf("suspiciousUserAgent(%q): expected %v, got %v", tt.userAgent, tt.want, got)
		}
	}
}

func TestRecommendations_HighRisk(t *testing.T) {
	// Arrange
	now := time.Now()
	facts := OrderFacts{
		TotalAmount: 11_000_000,
		UserAgent:   "SuperVPN client",
		CreatedAt:   now,
	}
	signals := Signals{
		AccountCreatedAt:      now.Add(-time.Hour),
		AccountsSharingIP:     3,
		FailedPaymentsLast24h: 4,
	}

	// Act
	analysis := Evaluate(facts, signals)

	// Assert: NEW_USER + MULTIPLE_ACCOUNTS + HIGH_VALUE + FAILED_PAYMENTS + VPN = 85
	if analysis.RiskLevel != RiskLevelHigh {
		t.Fatalf("expected level high, got %s (score %d)", analysis.RiskLevel, analysis.RiskScore)
	}

	wantRecs := map[string]bool{
		"Hold order for manual review":              false,
		"Require payment re-verification":           false,
		"Review accounts sharing the customer's IP": false,
		"Confirm delivery address out of band":      false,
	}
	for _, rec := range analysis.Recommendations {
		if _, ok := wantRecs[rec]; ok {
			wantRecs[rec] = true
		}
	}
	for rec, found := range wantRecs {
		if !found {
			t.Errorf("expected recommendation %q, got %v", rec, analysis.Recommendations)
		}
	}
}

func TestRecommendations_Deduped(t *testing.T) {
	// Arrange: both payment factors map to the same recommendation
	now := time.Now()
	facts := OrderFacts{TotalAmount: 100000, CreatedAt: now}
	signals := Signals{
		AccountCreatedAt:      now.Add(-365 * 24 * time.Hour),
		FailedPaymentsLast24h: 4,
		PaymentMethodsLast7d:  5,
	}

	// Act
	analysis := Evaluate(facts, signals)

	// Assert
	count := 0
	for _, rec := range analysis.Recommendations {
		if rec == "Require payment re-verification" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected the payment recommendation once, got %d occurrences in %v", count, analysis.Recommendations)
	}
}
