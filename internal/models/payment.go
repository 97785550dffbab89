package models

import "github.com/shopspring/decimal"

// Payment is money handed from one group member to another to settle debts.
type Payment struct {
	// ID is the unique identifier for the payment (UUID format).
	ID string

	GroupID string

	// PayerID is the user who handed over the money.
	PayerID string

	// ReceiverID is the user who received it.
	ReceiverID string

	Amount   decimal.Decimal
	Currency string

	// PaymentDate is the Unix timestamp of the payment.
	PaymentDate int64

	CreatedAt int64
}
