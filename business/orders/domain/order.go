// Package domain contains the Order/Trade Store's core types.
package domain

import (
	"time"

	"github.com/vantos/triarb/internal/money"
)

// Status is an order's lifecycle state as reported by the venue.
type Status string

const (
	StatusActive           Status = "ACTIVE"
	StatusPartiallyFilled  Status = "PARTIALLY_FILLED"
	StatusExecuted         Status = "EXECUTED"
	StatusCanceled         Status = "CANCELED"
	StatusPostOnlyCanceled Status = "POSTONLY_CANCELED"
)

// Order mirrors the venue's order record.
type Order struct {
	ID           int64
	ClientID     int64
	ClientIDDate string // YYYY-MM-DD, the UTC day client_id is unique within
	GID          int64
	Symbol       string
	Type         string
	AmountSigned money.Amount // positive = buy, negative = sell
	Price        money.Amount
	Status       Status
	UpdatedAt    time.Time
}

// IsTerminal reports whether status ends the order's lifecycle.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusExecuted, StatusCanceled, StatusPostOnlyCanceled:
		return true
	default:
		return false
	}
}

// Trade is a single execution against an order.
type Trade struct {
	ID        int64
	OrderID   int64
	Symbol    string
	Price     money.Amount
	Amount    money.Amount // signed, matches the order's side
	Timestamp time.Time
}

// Notification mirrors a venue acknowledgment frame ("n" data frame).
// ClientID is extracted from the nested order-info the venue echoes
// back inside the notification, and is how the Order-Chain Coordinator
// matches an on-req ack to the step that submitted it.
type Notification struct {
	Type     string // "on-req", "oc-req", ...
	ClientID int64
	Status   string // SUCCESS | ERROR
	Text     string
}

// IsError reports whether the notification signals a failure.
func (n Notification) IsError() bool {
	return n.Status == "ERROR"
}
