package repository

import (
	"context"
	"sync"

	"github.com/practicehub/payments-service/internal/domain"
)

// MemoryOrderRepository implements OrderRepository in memory for tests.
type MemoryOrderRepository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.PaymentOrder  // keyed by order id
	refunds map[string][]*domain.RefundRecord // keyed by order id
}

// NewMemoryOrderRepository creates an empty in-memory repository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders:  make(map[string]*domain.PaymentOrder),
		refunds: make(map[string][]*domain.RefundRecord),
	}
}

func (r *MemoryOrderRepository) CreateOrder(_ context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.orders {
		if existing.OrganizationID == order.OrganizationID && existing.Receipt == order.Receipt {
			return domain.ErrOrderAlreadyExists
		}
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *MemoryOrderRepository) GetOrder(_ context.Context, orgID, orderID string) (*domain.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok || order.OrganizationID != orgID {
		return nil, domain.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *MemoryOrderRepository) GetOrderByReceipt(_ context.Context, orgID, receipt string) (*domain.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.OrganizationID == orgID && order.Receipt == receipt {
			cp := *order
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *MemoryOrderRepository) GetOrderByProviderOrderID(_ context.Context, providerOrderID string) (*domain.PaymentOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, order := range r.orders {
		if order.ProviderOrderID == providerOrderID {
			cp := *order
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (r *MemoryOrderRepository) UpdateOrder(_ context.Context, order *domain.PaymentOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *MemoryOrderRepository) CreateRefund(_ context.Context, refund *domain.RefundRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *refund
	r.refunds[refund.OrderID] = append(r.refunds[refund.OrderID], &cp)
	return nil
}

func (r *MemoryOrderRepository) ListRefunds(_ context.Context, orderID string) ([]*domain.RefundRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := r.refunds[orderID]
	out := make([]*domain.RefundRecord, len(records))
	for i, rec := range records {
		cp := *rec
		out[i] = &cp
	}
	return out, nil
}
