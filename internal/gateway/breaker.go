package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/practicehub/payments-service/internal/domain"
)

// BreakerGateway wraps an adapter's network operations in a circuit breaker so
// a struggling provider sheds load fast instead of tying up request goroutines.
// Signature verification and checkout assets are local and bypass the breaker.
type BreakerGateway struct {
	inner PaymentGateway
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerGateway decorates an adapter with a circuit breaker.
func NewBreakerGateway(inner PaymentGateway) *BreakerGateway {
	settings := gobreaker.Settings{
		Name:        inner.Provider(),
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Provider-side rejections and unknown ids are answers, not outages.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var reqErr *RequestError
			var nfErr *NotFoundError
			return errors.As(err, &reqErr) || errors.As(err, &nfErr)
		},
	}
	return &BreakerGateway{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (g *BreakerGateway) Provider() string {
	return g.inner.Provider()
}

func (g *BreakerGateway) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	v, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.CreateOrder(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PaymentOrder), nil
}

func (g *BreakerGateway) GetPaymentStatus(ctx context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	v, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.GetPaymentStatus(ctx, providerOrderID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PaymentOrder), nil
}

func (g *BreakerGateway) RefundPayment(ctx context.Context, providerPaymentID string, req *RefundRequest) (*domain.RefundRecord, error) {
	v, err := g.cb.Execute(func() (interface{}, error) {
		return g.inner.RefundPayment(ctx, providerPaymentID, req)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.RefundRecord), nil
}

func (g *BreakerGateway) VerifyWebhookSignature(signature string, payload []byte, timestamp string) (*WebhookVerification, error) {
	return g.inner.VerifyWebhookSignature(signature, payload, timestamp)
}

func (g *BreakerGateway) CheckoutAsset() CheckoutAsset {
	return g.inner.CheckoutAsset()
}
