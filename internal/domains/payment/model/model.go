package model

import bookingModel "wellness/internal/domains/booking/model"

const (
	RefundFull    = "full"
	RefundPartial = "partial"
)

// RefundAmount is what a refund of the given kind returns. Partial refunds are half the charge,
// rounded down.
func RefundAmount(kind string, final int64) int64 {
	if kind == RefundPartial {
		return final / 2
	}

	return final
}

// RefundedStatus is the payment status a booking moves to after a refund of the given kind.
func RefundedStatus(kind string) string {
	if kind == RefundPartial {
		return bookingModel.PaymentPartialRefund
	}

	return bookingModel.PaymentRefunded
}

// ThroughGateway reports whether money for the method moved through the payment provider. Other
// methods are settled at the desk and refunds are only recorded.
func ThroughGateway(method string) bool {
	return method == bookingModel.MethodCard
}
