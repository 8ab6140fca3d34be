package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for the tables the gateway owns
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type UserRole string

const (
	UserRoleResident UserRole = "RESIDENT"
	UserRoleManager  UserRole = "MANAGER"
	UserRoleAdmin    UserRole = "ADMIN"
)

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodBank PaymentMethod = "bank"
	PaymentMethodCard PaymentMethod = "card"
)

// IsValidPaymentMethod checks if a given method is one the backend accepts
func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodCard:
		return true
	default:
		return false
	}
}

type TransactionKind string

const (
	TransactionKindFee     TransactionKind = "fee"
	TransactionKindPayment TransactionKind = "payment"
)

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "PENDING"
	UploadStatusUploaded   UploadStatus = "UPLOADED"
	UploadStatusRegistered UploadStatus = "REGISTERED"
	UploadStatusOrphaned   UploadStatus = "ORPHANED"
	UploadStatusDiscarded  UploadStatus = "DISCARDED"
)
