package db

import (
	"time"

	"github.com/google/uuid"
)

// Local payment states. A payment starts new, moves to authorization or
// completed after the return from the terminal, and from there to
// authorization_voided, completed, partially_refunded or refunded.
const (
	StateNew                 = "new"
	StateAuthorization       = "authorization"
	StateCompleted           = "completed"
	StateAuthorizationVoided = "authorization_voided"
	StatePartiallyRefunded   = "partially_refunded"
	StateRefunded            = "refunded"
)

// PaymentEntity is the host-side record of one payment. Amounts are
// minor units.
type PaymentEntity struct {
	ID             uuid.UUID
	OrderNumber    string
	Amount         int64
	RefundedAmount int64
	Currency       string
	State          string
	RemoteID       string
	RemoteState    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Balance is what is still capturable or refundable on the payment.
func (p *PaymentEntity) Balance() int64 {
	return p.Amount - p.RefundedAmount
}

// CheckoutSessionEntity correlates an outstanding redirect to the hosted
// terminal with the remote transaction id registered for it. Consumed
// exactly once by the return handler.
type CheckoutSessionEntity struct {
	RemoteID    string
	OrderNumber string
	Amount      int64
	Currency    string
	Capture     bool
	CreatedAt   time.Time
	ConsumedAt  *time.Time
}
