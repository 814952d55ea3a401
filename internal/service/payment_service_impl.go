package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/practicehub/payments-service/internal/domain"
	"github.com/practicehub/payments-service/internal/factory"
	"github.com/practicehub/payments-service/internal/gateway"
	"github.com/practicehub/payments-service/internal/repository"
)

// paymentServiceImpl implements PaymentService.
type paymentServiceImpl struct {
	factory *factory.Factory
	repo    repository.OrderRepository
	log     *zap.Logger
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(f *factory.Factory, repo repository.OrderRepository, log *zap.Logger) PaymentService {
	if log == nil {
		log = zap.NewNop()
	}
	return &paymentServiceImpl{factory: f, repo: repo, log: log}
}

// CreateOrder opens an order with the organization's gateway and persists the
// resulting record. The receipt doubles as the caller's idempotency handle:
// a duplicate receipt is rejected before any provider call is made.
func (s *paymentServiceImpl) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*domain.PaymentOrder, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if req.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if existing, err := s.repo.GetOrderByReceipt(ctx, req.OrganizationID, req.Receipt); err == nil && existing != nil {
		return nil, domain.ErrOrderAlreadyExists
	}

	gw, err := s.factory.GetGateway(ctx, req.OrganizationID, req.Provider)
	if err != nil {
		return nil, err
	}

	order, err := gw.CreateOrder(ctx, &gateway.CreateOrderRequest{
		Receipt:   req.Receipt,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Customer:  req.Customer,
		Metadata:  req.Metadata,
		ReturnURL: req.ReturnURL,
		NotifyURL: req.NotifyURL,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		// The provider-side order exists; surface the storage failure rather
		// than retrying the mutating call.
		return nil, fmt.Errorf("persist payment order: %w", err)
	}

	s.log.Info("payment order created",
		zap.String("organization_id", req.OrganizationID),
		zap.String("order_id", order.ID),
		zap.String("provider", order.Provider),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}

// GetPaymentStatus fetches the provider's current view of an order and folds
// it into the stored record.
func (s *paymentServiceImpl) GetPaymentStatus(ctx context.Context, orgID, orderID string) (*domain.PaymentOrder, error) {
	order, err := s.repo.GetOrder(ctx, orgID, orderID)
	if err != nil {
		return nil, err
	}

	gw, err := s.factory.GetGateway(ctx, orgID, order.Provider)
	if err != nil {
		return nil, err
	}

	remote, err := gw.GetPaymentStatus(ctx, order.ProviderOrderID)
	if err != nil {
		return nil, err
	}

	if remote.ProviderPayment != "" {
		order.ProviderPayment = remote.ProviderPayment
	}
	if remote.Status != order.Status {
		if applyErr := order.ApplyStatus(remote.Status); applyErr != nil {
			// A stale provider read never regresses a terminal record.
			s.log.Warn("ignoring provider status regression",
				zap.String("order_id", order.ID),
				zap.String("stored", string(order.Status)),
				zap.String("reported", string(remote.Status)),
			)
		} else if err := s.repo.UpdateOrder(ctx, order); err != nil {
			return nil, fmt.Errorf("persist status update: %w", err)
		}
	}
	return order, nil
}

// RefundOrder refunds a paid order, partially when an amount is given. The
// amount bound is enforced against the stored record before the provider is
// called; over-refunds fail, they are never clamped.
func (s *paymentServiceImpl) RefundOrder(ctx context.Context, req *RefundOrderRequest) (*domain.RefundRecord, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	order, err := s.repo.GetOrder(ctx, req.OrganizationID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if !order.IsRefundable() {
		return nil, &gateway.RequestError{
			Provider: order.Provider,
			Op:       "refund payment",
			Reason:   fmt.Sprintf("order is %s, only paid orders are refundable", order.Status),
		}
	}

	amount := req.Amount
	if amount == 0 {
		amount = order.Amount - order.AmountRefunded
	}
	if amount <= 0 || order.AmountRefunded+amount > order.Amount {
		return nil, &gateway.RequestError{
			Provider: order.Provider,
			Op:       "refund payment",
			Reason:   "refund amount exceeds amount paid",
		}
	}

	gw, err := s.factory.GetGateway(ctx, req.OrganizationID, order.Provider)
	if err != nil {
		return nil, err
	}

	refund, err := gw.RefundPayment(ctx, order.ProviderPayment, &gateway.RefundRequest{
		Amount: amount,
		Reason: req.Reason,
		Notes:  req.Notes,
	})
	if err != nil {
		return nil, err
	}
	refund.OrderID = order.ID

	if err := s.repo.CreateRefund(ctx, refund); err != nil {
		return nil, fmt.Errorf("persist refund record: %w", err)
	}
	if refund.Status == domain.RefundStatusProcessed {
		if err := order.RecordRefund(refund.Amount); err == nil {
			if err := s.repo.UpdateOrder(ctx, order); err != nil {
				return nil, fmt.Errorf("persist refund total: %w", err)
			}
		}
	}

	s.log.Info("refund issued",
		zap.String("organization_id", req.OrganizationID),
		zap.String("order_id", order.ID),
		zap.Float64("amount", refund.Amount),
		zap.String("status", string(refund.Status)),
	)
	return refund, nil
}

// HandleWebhook verifies a provider callback and, when valid, applies the
// reported lifecycle event to the matching stored order. Invalid signatures
// are data, not errors: the HTTP layer answers with a plain 400.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, req *WebhookRequest) (*gateway.WebhookVerification, error) {
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}

	gw, err := s.factory.GetGateway(ctx, req.OrganizationID, req.Provider)
	if err != nil {
		return nil, err
	}

	verification, err := gw.VerifyWebhookSignature(req.Signature, req.Payload, req.Timestamp)
	if err != nil {
		return nil, err
	}
	if !verification.Valid {
		s.log.Warn("webhook rejected",
			zap.String("organization_id", req.OrganizationID),
			zap.String("provider", req.Provider),
			zap.String("reason", verification.Reason),
		)
		return verification, nil
	}

	if status, orderRef := eventStatus(verification); status != "" && orderRef != "" {
		s.applyWebhookStatus(ctx, orderRef, status)
	}
	return verification, nil
}

// CheckoutAsset reports the organization's provider checkout script.
func (s *paymentServiceImpl) CheckoutAsset(ctx context.Context, orgID, provider string) (gateway.CheckoutAsset, error) {
	gw, err := s.factory.GetGateway(ctx, orgID, provider)
	if err != nil {
		return gateway.CheckoutAsset{}, err
	}
	return gw.CheckoutAsset(), nil
}

// webhookEventStatuses maps the provider-agnostic event families the adapters
// surface to the canonical status they imply.
var webhookEventStatuses = map[string]domain.PaymentStatus{
	"order.paid":                    domain.PaymentStatusPaid,
	"payment.captured":              domain.PaymentStatusPaid,
	"payment_intent.succeeded":      domain.PaymentStatusPaid,
	"payment.failed":                domain.PaymentStatusFailed,
	"payment_intent.payment_failed": domain.PaymentStatusFailed,
	"payment_intent.canceled":       domain.PaymentStatusCancelled,
}

// eventStatus extracts the canonical status and provider order reference from
// a verified event, when the event family is one the core tracks. Stripe puts
// the object at the top level; Razorpay nests it under payload.<kind>.entity.
func eventStatus(v *gateway.WebhookVerification) (domain.PaymentStatus, string) {
	status, ok := webhookEventStatuses[v.EventType]
	if !ok {
		return "", ""
	}
	if ref := orderRef(v.Event); ref != "" {
		return status, ref
	}
	for _, kind := range []string{"payment", "order"} {
		wrapper, ok := v.Event[kind].(map[string]any)
		if !ok {
			continue
		}
		if entity, ok := wrapper["entity"].(map[string]any); ok {
			if ref := orderRef(entity); ref != "" {
				return status, ref
			}
		}
	}
	if entity, ok := v.Event["entity"].(map[string]any); ok {
		if ref := orderRef(entity); ref != "" {
			return status, ref
		}
	}
	return "", ""
}

// orderRef picks the provider order reference out of an event object,
// preferring the explicit order_id a payment entity carries over its own id.
func orderRef(m map[string]any) string {
	for _, key := range []string{"order_id", "id"} {
		if ref, ok := m[key].(string); ok && ref != "" {
			return ref
		}
	}
	return ""
}

func (s *paymentServiceImpl) applyWebhookStatus(ctx context.Context, providerOrderID string, status domain.PaymentStatus) {
	order, err := s.repo.GetOrderByProviderOrderID(ctx, providerOrderID)
	if err != nil {
		s.log.Warn("webhook for unknown order", zap.String("provider_order_id", providerOrderID))
		return
	}
	if order.IsFinal() {
		return
	}
	if err := order.ApplyStatus(status); err != nil {
		return
	}
	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		s.log.Error("persist webhook status", zap.Error(err), zap.String("order_id", order.ID))
	}
}
