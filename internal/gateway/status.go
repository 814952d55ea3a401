package gateway

import (
	"strings"

	"github.com/practicehub/payments-service/internal/domain"
)

// statusTable maps a provider's native status vocabulary (lowercase) to the
// canonical enum. Each adapter owns one table and consults it through
// normalizeStatus on every code path, so create/status/refund can never
// disagree about what a native status means.
type statusTable map[string]domain.PaymentStatus

// normalizeStatus looks up a native status case-insensitively. Unknown values
// normalize to pending: providers introduce new sub-statuses over time, and the
// least-final state is the only safe default (reporting failed for a status we
// merely do not recognize would be worse).
func normalizeStatus(table statusTable, native string) domain.PaymentStatus {
	if s, ok := table[strings.ToLower(strings.TrimSpace(native))]; ok {
		return s
	}
	return domain.PaymentStatusPending
}

// refundStatusTable is the refund-record equivalent of statusTable.
type refundStatusTable map[string]domain.RefundStatus

func normalizeRefundStatus(table refundStatusTable, native string) domain.RefundStatus {
	if s, ok := table[strings.ToLower(strings.TrimSpace(native))]; ok {
		return s
	}
	return domain.RefundStatusPending
}
