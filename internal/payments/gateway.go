package payments

import "context"

// Order is the gateway-side order a client pays against.
type Order struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Gateway abstracts the payment provider: create an order for an amount,
// and verify the signature the provider returns after the client pays.
// Verify is pure (HMAC over the order/payment pair) and never touches the
// network.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error)
	Verify(orderID, paymentID, signature string) bool
}
