package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"marketplace/internal/orders/ports"
	apperrors "marketplace/pkg/errors"
)

// PaymentModel is the GORM model for payment ledger records
type PaymentModel struct {
	ID          uint      `gorm:"primaryKey"`
	OrderID     uint      `gorm:"index;not null"`
	Type        string    `gorm:"size:20;not null"`
	Method      string    `gorm:"size:32"`
	Amount      float64   `gorm:"not null"`
	Status      string    `gorm:"size:20;not null"`
	Description string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PostgresPaymentLedger implements the PaymentLedger port using PostgreSQL
type PostgresPaymentLedger struct {
	db *gorm.DB
}

// NewPostgresPaymentLedger creates a new PostgreSQL payment ledger
func NewPostgresPaymentLedger(db *gorm.DB) *PostgresPaymentLedger {
	return &PostgresPaymentLedger{db: db}
}

// Migrate runs auto-migration for the payment model
func (l *PostgresPaymentLedger) Migrate() error {
	return l.db.AutoMigrate(&PaymentModel{})
}

// Insert appends a payment record
func (l *PostgresPaymentLedger) Insert(ctx context.Context, record ports.PaymentRecord) error {
	model := PaymentModel{
		OrderID:     record.OrderID,
		Type:        record.Type,
		Method:      record.Method,
		Amount:      record.Amount,
		Status:      record.Status,
		Description: record.Description,
		CreatedAt:   record.CreatedAt,
	}

	result := l.db.WithContext(ctx).Create(&model)
	if result.Error != nil {
		return apperrors.NewInternal("failed to insert payment record", result.Error)
	}
	return nil
}
