package domain

import (
	"strings"
	"time"
)

// RiskLevel is the coarse bucket derived from the additive score
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// Factor codes, grouped by the signal category that produces them
const (
	FactorNewUser            = "NEW_USER"
	FactorMultipleAccounts   = "MULTIPLE_ACCOUNTS"
	FactorRapidOrders        = "RAPID_ORDERS"
	FactorHighValueOrder     = "HIGH_VALUE_ORDER"
	FactorUnusualCombination = "UNUSUAL_PRODUCT_COMBINATION"
	FactorRapidCheckout      = "RAPID_CHECKOUT"
	FactorFailedPayments     = "FAILED_PAYMENTS"
	FactorMultiplePayMethods = "MULTIPLE_PAYMENT_METHODS"
	FactorVPNProxy           = "VPN_PROXY"
	FactorMultipleDevices    = "MULTIPLE_DEVICES"
)

// Factor weights
const (
	weightNewUser            = 10
	weightMultipleAccounts   = 25
	weightRapidOrders        = 20
	weightHighValueOrder     = 15
	weightUnusualCombination = 10
	weightRapidCheckout      = 10
	weightFailedPayments     = 15
	weightMultiplePayMethods = 20
	weightVPNProxy           = 20
	weightMultipleDevices    = 15
)

// Trigger thresholds
const (
	newAccountAge        = 7 * 24 * time.Hour
	sharedIPAccountLimit = 2
	rapidOrderLimit      = 5
	highValueThreshold   = 10_000_000
	unusualCategoryLimit = 5
	unusualItemLimit     = 10
	rapidCheckoutWindow  = 30 * time.Second
	failedPaymentLimit   = 2
	paymentMethodLimit   = 3
	sameUserAgentLimit   = 10
	maxScore             = 100
	mediumLevelThreshold = 40
	highLevelThreshold   = 70
	confidenceBoost      = 20
)

// Factor is one triggered risk signal with its weight
type Factor struct {
	Code     string `json:"code"`
	Category string `json:"category"` // account | behavior | payment | device
	Weight   int    `json:"weight"`
	Detail   string `json:"detail"`
}

// Analysis is the advisory result of scoring one order
type Analysis struct {
	OrderID         uint      `json:"order_id"`
	RiskScore       int       `json:"risk_score"`
	RiskLevel       RiskLevel `json:"risk_level"`
	RiskFactors     []Factor  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
	Confidence      int       `json:"confidence"`
	AnalyzedAt      time.Time `json:"analyzed_at"`
}

// OrderFacts are the order-side inputs to the scoring function
type OrderFacts struct {
	OrderID            uint
	CustomerID         uint
	TotalAmount        float64
	ItemCount          int
	DistinctCategories int
	UserAgent          string
	ClientIP           string
	CreatedAt          time.Time
	CartCreatedAt      *time.Time
}

// Signals are the customer-side inputs collected from history
type Signals struct {
	AccountCreatedAt        time.Time
	AccountsSharingIP       int
	OrdersLast24h           int
	FailedPaymentsLast24h   int
	PaymentMethodsLast7d    int
	OrdersWithSameUserAgent int
}

// Evaluate scores an order against the weighted heuristics. The score is the
// sum of all triggered factor weights, capped at 100.
func Evaluate(facts OrderFacts, signals Signals) Analysis {
	var factors []Factor

	// Account signals
	if facts.CreatedAt.Sub(signals.AccountCreatedAt) < newAccountAge {
		factors = append(factors, Factor{
			Code: FactorNewUser, Category: "account", Weight: weightNewUser,
			Detail: "account is less than 7 days old",
		})
	}
	if signals.AccountsSharingIP > sharedIPAccountLimit {
		factors = append(factors, Factor{
			Code: FactorMultipleAccounts, Category: "account", Weight: weightMultipleAccounts,
			Detail: "more than 2 accounts share the customer's last IP",
		})
	}

	// Behavioral signals
	if signals.OrdersLast24h > rapidOrderLimit {
		factors = append(factors, Factor{
			Code: FactorRapidOrders, Category: "behavior", Weight: weightRapidOrders,
			Detail: "more than 5 orders in the trailing 24 hours",
		})
	}
	if facts.TotalAmount > highValueThreshold {
		factors = append(factors, Factor{
			Code: FactorHighValueOrder, Category: "behavior", Weight: weightHighValueOrder,
			Detail: "order total exceeds 10,000,000",
		})
	}
	if facts.DistinctCategories > unusualCategoryLimit && facts.ItemCount > unusualItemLimit {
		factors = append(factors, Factor{
			Code: FactorUnusualCombination, Category: "behavior", Weight: weightUnusualCombination,
			Detail: "unusually broad product combination",
		})
	}
	if facts.CartCreatedAt != nil && facts.CreatedAt.Sub(*facts.CartCreatedAt) < rapidCheckoutWindow {
		factors = append(factors, Factor{
			Code: FactorRapidCheckout, Category: "behavior", Weight: weightRapidCheckout,
			Detail: "checkout completed less than 30 seconds after cart creation",
		})
	}

	// Payment signals
	if signals.FailedPaymentsLast24h > failedPaymentLimit {
		factors = append(factors, Factor{
			Code: FactorFailedPayments, Category: "payment", Weight: weightFailedPayments,
			Detail: "more than 2 failed payments in the trailing 24 hours",
		})
	}
	if signals.PaymentMethodsLast7d > paymentMethodLimit {
		factors = append(factors, Factor{
			Code: FactorMultiplePayMethods, Category: "payment", Weight: weightMultiplePayMethods,
			Detail: "more than 3 distinct payment methods in the trailing 7 days",
		})
	}

	// Device signals
	if suspiciousUserAgent(facts.UserAgent) {
		factors = append(factors, Factor{
			Code: FactorVPNProxy, Category: "device", Weight: weightVPNProxy,
			Detail: "user agent indicates VPN, proxy or Tor usage",
		})
	}
	if signals.OrdersWithSameUserAgent > sameUserAgentLimit {
		factors = append(factors, Factor{
			Code: FactorMultipleDevices, Category: "device", Weight: weightMultipleDevices,
			Detail: "more than 10 orders share an identical user agent",
		})
	}

	score := 0
	for _, f := range factors {
		score += f.Weight
	}
	if score > maxScore {
		score = maxScore
	}

	level := RiskLevelLow
	switch {
	case score >= highLevelThreshold:
		level = RiskLevelHigh
	case score >= mediumLevelThreshold:
		level = RiskLevelMedium
	}

	confidence := score + confidenceBoost
	if confidence > maxScore {
		confidence = maxScore
	}

	return Analysis{
		OrderID:         facts.OrderID,
		RiskScore:       score,
		RiskLevel:       level,
		RiskFactors:     factors,
		Recommendations: recommendations(level, factors),
		Confidence:      confidence,
		AnalyzedAt:      time.Now(),
	}
}

// suspiciousUserAgent reports whether the user agent names a VPN, proxy or
// Tor client. The product tokens are matched as written; a folded match
// would trip on agents like "Motorola" or "monitor".
func suspiciousUserAgent(userAgent string) bool {
	return strings.Contains(userAgent, "VPN") ||
		strings.Contains(userAgent, "Proxy") ||
		strings.Contains(userAgent, "Tor")
}

func recommendations(level RiskLevel, factors []Factor) []string {
	var recs []string

	switch level {
	case RiskLevelHigh:
		recs = append(recs, "Hold order for manual review")
	case RiskLevelMedium:
		recs = append(recs, "Verify customer identity before fulfillment")
	default:
		recs = append(recs, "No action required")
	}

	for _, f := range factors {
		switch f.Code {
		case FactorFailedPayments, FactorMultiplePayMethods:
			recs = append(recs, "Require payment re-verification")
		case FactorMultipleAccounts:
			recs = append(recs, "Review accounts sharing the customer's IP")
		case FactorVPNProxy:
			recs = append(recs, "Confirm delivery address out of band")
		}
	}

	return dedupe(recs)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}
