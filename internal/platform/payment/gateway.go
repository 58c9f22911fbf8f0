package payment

import "context"

// Order is a payment order opened with the gateway before checkout.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// CreateOrderParams carries what the gateway needs to open an order. Notes
// travel to the gateway dashboard and come back in webhooks, so they hold
// our own identifiers.
type CreateOrderParams struct {
	Amount    int64
	Currency  string
	Receipt   string
	UserID    int64
	BookingID int64
}

// Gateway is the slice of the payment provider the booking flow depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, p CreateOrderParams) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
