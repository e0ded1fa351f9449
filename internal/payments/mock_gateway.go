package payments

import (
	"context"
	"fmt"
	"sync/atomic"
)

// MockGateway is an in-memory Gateway for tests and local development. It
// issues sequential order ids and accepts the signature "valid" (or any
// injected verifier).
type MockGateway struct {
	counter  atomic.Int64
	VerifyFn func(orderID, paymentID, signature string) bool
	FailNext bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount float64, receipt string) (*Order, error) {
	if m.FailNext {
		m.FailNext = false
		return nil, fmt.Errorf("mock gateway: order creation failed")
	}
	return &Order{
		OrderID:  fmt.Sprintf("order_mock_%d", m.counter.Add(1)),
		Amount:   amount,
		Currency: "INR",
	}, nil
}

func (m *MockGateway) Verify(orderID, paymentID, signature string) bool {
	if m.VerifyFn != nil {
		return m.VerifyFn(orderID, paymentID, signature)
	}
	return signature == "valid"
}
