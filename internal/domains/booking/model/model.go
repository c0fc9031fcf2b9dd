package model

import (
	"time"

	slotModel "wellness/internal/domains/slot/model"
	"wellness/shared/constant"
	"wellness/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID               = "id"
	FieldCustomerName     = "customer_name"
	FieldCustomerEmail    = "customer_email"
	FieldCustomerPhone    = "customer_phone"
	FieldSessionDate      = "session_date"
	FieldSessionTime      = "session_time"
	FieldServiceType      = "service_type"
	FieldBookingType      = "booking_type"
	FieldGuestCount       = "guest_count"
	FieldDurationMinutes  = "duration_minutes"
	FieldPriceAmount      = "price_amount"
	FieldDiscountAmount   = "discount_amount"
	FieldFinalAmount      = "final_amount"
	FieldRefundedAmount   = "refunded_amount"
	FieldPaymentMethod    = "payment_method"
	FieldPaymentStatus    = "payment_status"
	FieldBookingStatus    = "booking_status"
	FieldSpecialRequests  = "special_requests"
	FieldSlotID           = "slot_id"
	FieldPaymentSessionID = "payment_session_id"
	FieldVoucherCode      = "voucher_code"
	FieldCancelledAt      = "cancelled_at"
)

const (
	TypeCommunal = "communal"
	TypePrivate  = "private"
)

const (
	MethodCash        = "cash"
	MethodCard        = "card"
	MethodGiftVoucher = "gift_voucher"
	MethodToken       = "token"
	MethodComp        = "comp"
)

const (
	PaymentPending       = "pending"
	PaymentPaid          = "paid"
	PaymentCancelled     = "cancelled"
	PaymentRefunded      = "refunded"
	PaymentPartialRefund = "partial_refund"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another. Completed and
// cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

type Booking struct {
	ID               string     `db:"id"`
	CustomerName     string     `db:"customer_name"`
	CustomerEmail    string     `db:"customer_email"`
	CustomerPhone    string     `db:"customer_phone"`
	SessionDate      time.Time  `db:"session_date"`
	SessionTime      string     `db:"session_time"`
	ServiceType      string     `db:"service_type"`
	BookingType      string     `db:"booking_type"`
	GuestCount       int        `db:"guest_count"`
	DurationMinutes  int        `db:"duration_minutes"`
	PriceAmount      int64      `db:"price_amount"`
	DiscountAmount   int64      `db:"discount_amount"`
	FinalAmount      int64      `db:"final_amount"`
	RefundedAmount   int64      `db:"refunded_amount"`
	PaymentMethod    string     `db:"payment_method"`
	PaymentStatus    string     `db:"payment_status"`
	BookingStatus    string     `db:"booking_status"`
	SpecialRequests  string     `db:"special_requests"`
	SlotID           string     `db:"slot_id"`
	PaymentSessionID *string    `db:"payment_session_id"`
	VoucherCode      *string    `db:"voucher_code"`
	CancelledAt      *time.Time `db:"cancelled_at"`
	model.Metadata
}

func (b Booking) IsPrivate() bool {
	return b.BookingType == TypePrivate
}

// HoldsSlot reports whether the booking still counts towards its slot's occupancy.
func (b Booking) HoldsSlot() bool {
	return b.BookingStatus != StatusCancelled
}

func (b Booking) SlotKey() slotModel.Key {
	return slotModel.Key{
		Date:        b.SessionDate.Format(constant.DayFormat),
		Time:        b.SessionTime,
		ServiceType: b.ServiceType,
	}
}

// SlotMode is the guard used when this booking first takes its slot.
func (b Booking) SlotMode() slotModel.Mode {
	if b.IsPrivate() {
		return slotModel.ModeClaimPrivate
	}

	return slotModel.ModeCommunal
}

// SettledOnCreate reports whether the method is settled at the desk or needs no payment, as
// opposed to card which waits for the gateway.
func SettledOnCreate(method string) bool {
	return method != MethodCard
}

// ChargeAmount is what the customer owes. Token and comp bookings are never charged.
func ChargeAmount(method string, price, discount int64) int64 {
	if method == MethodToken || method == MethodComp {
		return 0
	}

	return max(0, price-discount)
}
