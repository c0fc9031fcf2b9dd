package dto

import (
	"github.com/google/uuid"

	"wellness/internal/domains/booking/model"
	"wellness/shared"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	gModel "wellness/shared/model"
	"wellness/shared/timezone"
)

type CreateBookingRequest struct {
	CustomerName    string `json:"customer_name"    validate:"required,max=100"`
	CustomerEmail   string `json:"customer_email"   validate:"required,email,max=100"`
	CustomerPhone   string `json:"customer_phone"   validate:"omitempty,max=20"`
	SessionDate     string `json:"session_date"     validate:"required,notpast"`
	SessionTime     string `json:"session_time"     validate:"required,clock"`
	ServiceType     string `json:"service_type"     validate:"required,oneof=sauna ice_bath combined"`
	BookingType     string `json:"booking_type"     validate:"required,oneof=communal private"`
	GuestCount      int    `json:"guest_count"      validate:"required,gte=1,lte=10"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,gte=15,lte=240"`
	PriceAmount     int64  `json:"price_amount"     validate:"gte=0"`
	DiscountAmount  int64  `json:"discount_amount"  validate:"gte=0,ltefield=PriceAmount"`
	PaymentMethod   string `json:"payment_method"   validate:"required,oneof=cash card gift_voucher token comp"`
	VoucherCode     string `json:"voucher_code"     validate:"required_if=PaymentMethod gift_voucher,max=50"`
	SpecialRequests string `json:"special_requests" validate:"omitempty,max=500"`
}

// ToModel builds a confirmed booking. Card payments stay pending until the gateway confirms them.
func (c *CreateBookingRequest) ToModel(user string, defaultDuration int) (model.Booking, error) {
	sessionDate, err := timezone.Parse(constant.DayFormat, c.SessionDate)
	if err != nil {
		return model.Booking{}, err
	}

	duration := c.DurationMinutes
	if duration == 0 {
		duration = defaultDuration
	}

	paymentStatus := model.PaymentPending
	if model.SettledOnCreate(c.PaymentMethod) {
		paymentStatus = model.PaymentPaid
	}

	var voucher *string
	if c.VoucherCode != "" {
		voucher = &c.VoucherCode
	}

	return model.Booking{
		ID:              uuid.NewString(),
		CustomerName:    c.CustomerName,
		CustomerEmail:   c.CustomerEmail,
		CustomerPhone:   c.CustomerPhone,
		SessionDate:     sessionDate,
		SessionTime:     c.SessionTime,
		ServiceType:     c.ServiceType,
		BookingType:     c.BookingType,
		GuestCount:      c.GuestCount,
		DurationMinutes: duration,
		PriceAmount:     c.PriceAmount,
		DiscountAmount:  c.DiscountAmount,
		FinalAmount:     model.ChargeAmount(c.PaymentMethod, c.PriceAmount, c.DiscountAmount),
		PaymentMethod:   c.PaymentMethod,
		PaymentStatus:   paymentStatus,
		BookingStatus:   model.StatusConfirmed,
		SpecialRequests: c.SpecialRequests,
		VoucherCode:     voucher,
		Metadata:        gModel.NewMetadata(user),
	}, nil
}

// UpdateBookingRequest is a partial update. Nil fields are left as they are.
type UpdateBookingRequest struct {
	CustomerName    *string `json:"customer_name"    validate:"omitempty,max=100"`
	CustomerEmail   *string `json:"customer_email"   validate:"omitempty,email,max=100"`
	CustomerPhone   *string `json:"customer_phone"   validate:"omitempty,max=20"`
	SessionDate     *string `json:"session_date"     validate:"omitempty,notpast"`
	SessionTime     *string `json:"session_time"     validate:"omitempty,clock"`
	ServiceType     *string `json:"service_type"     validate:"omitempty,oneof=sauna ice_bath combined"`
	BookingType     *string `json:"booking_type"     validate:"omitempty,oneof=communal private"`
	GuestCount      *int    `json:"guest_count"      validate:"omitempty,gte=1,lte=10"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gte=15,lte=240"`
	PriceAmount     *int64  `json:"price_amount"     validate:"omitempty,gte=0"`
	DiscountAmount  *int64  `json:"discount_amount"  validate:"omitempty,gte=0"`
	PaymentStatus   *string `json:"payment_status"   validate:"omitempty,oneof=pending paid cancelled refunded partial_refund"`
	BookingStatus   *string `json:"booking_status"   validate:"omitempty,oneof=pending confirmed completed cancelled"`
	SpecialRequests *string `json:"special_requests" validate:"omitempty,max=500"`
}

func (u *UpdateBookingRequest) IsEmpty() bool {
	return *u == UpdateBookingRequest{}
}

// MovesSlot reports whether the update touches which slot the booking sits in or how much of it
// the booking takes.
func (u *UpdateBookingRequest) MovesSlot() bool {
	return u.SessionDate != nil || u.SessionTime != nil || u.ServiceType != nil || u.BookingType != nil || u.GuestCount != nil
}

// Cancels reports whether the update asks for the booking to be cancelled.
func (u *UpdateBookingRequest) Cancels() bool {
	return (u.BookingStatus != nil && *u.BookingStatus == model.StatusCancelled) ||
		(u.PaymentStatus != nil && *u.PaymentStatus == model.PaymentCancelled)
}

// Apply returns a copy of booking with every present field replaced.
func (u *UpdateBookingRequest) Apply(booking model.Booking) (model.Booking, error) {
	next := booking

	if u.SessionDate != nil {
		day, err := timezone.Parse(constant.DayFormat, *u.SessionDate)
		if err != nil {
			return booking, err
		}

		next.SessionDate = day
	}

	set(&next.CustomerName, u.CustomerName)
	set(&next.CustomerEmail, u.CustomerEmail)
	set(&next.CustomerPhone, u.CustomerPhone)
	set(&next.SessionTime, u.SessionTime)
	set(&next.ServiceType, u.ServiceType)
	set(&next.BookingType, u.BookingType)
	set(&next.GuestCount, u.GuestCount)
	set(&next.DurationMinutes, u.DurationMinutes)
	set(&next.PriceAmount, u.PriceAmount)
	set(&next.DiscountAmount, u.DiscountAmount)
	set(&next.PaymentStatus, u.PaymentStatus)
	set(&next.BookingStatus, u.BookingStatus)
	set(&next.SpecialRequests, u.SpecialRequests)

	next.FinalAmount = model.ChargeAmount(next.PaymentMethod, next.PriceAmount, next.DiscountAmount)

	return next, nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Changes lists the columns that differ between two versions of a booking.
func Changes(before, after model.Booking, user string) map[string]any {
	fields := map[string]any{}

	compare := func(column string, prev, next any) {
		if prev != next {
			fields[column] = next
		}
	}

	compare(model.FieldCustomerName, before.CustomerName, after.CustomerName)
	compare(model.FieldCustomerEmail, before.CustomerEmail, after.CustomerEmail)
	compare(model.FieldCustomerPhone, before.CustomerPhone, after.CustomerPhone)
	compare(model.FieldSessionTime, before.SessionTime, after.SessionTime)
	compare(model.FieldServiceType, before.ServiceType, after.ServiceType)
	compare(model.FieldBookingType, before.BookingType, after.BookingType)
	compare(model.FieldGuestCount, before.GuestCount, after.GuestCount)
	compare(model.FieldDurationMinutes, before.DurationMinutes, after.DurationMinutes)
	compare(model.FieldPriceAmount, before.PriceAmount, after.PriceAmount)
	compare(model.FieldDiscountAmount, before.DiscountAmount, after.DiscountAmount)
	compare(model.FieldFinalAmount, before.FinalAmount, after.FinalAmount)
	compare(model.FieldPaymentStatus, before.PaymentStatus, after.PaymentStatus)
	compare(model.FieldBookingStatus, before.BookingStatus, after.BookingStatus)
	compare(model.FieldSpecialRequests, before.SpecialRequests, after.SpecialRequests)
	compare(model.FieldSlotID, before.SlotID, after.SlotID)

	if !before.SessionDate.Equal(after.SessionDate) {
		fields[model.FieldSessionDate] = after.SessionDate.Format(constant.DayFormat)
	}

	if len(fields) > 0 {
		fields[constant.FieldModifiedAt] = timezone.Now()
		fields[constant.FieldModifiedBy] = user
	}

	return fields
}

type GetBookingsRequest struct {
	SessionDate   string `json:"session_date"   validate:"omitempty,datetime=2006-01-02"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,max=100"`
	ServiceType   string `json:"service_type"   validate:"omitempty,oneof=sauna ice_bath combined"`
	BookingStatus string `json:"booking_status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
	PaymentStatus string `json:"payment_status" validate:"omitempty,oneof=pending paid cancelled refunded partial_refund"`
}

func (r GetBookingsRequest) Filter() gDto.FilterGroup {
	filters := []any{}

	eq := func(field, value string) {
		if value != "" {
			filters = append(filters, gDto.Eq(model.TableName, field, value))
		}
	}

	eq(model.FieldSessionDate, r.SessionDate)
	eq(model.FieldServiceType, r.ServiceType)
	eq(model.FieldBookingStatus, r.BookingStatus)
	eq(model.FieldPaymentStatus, r.PaymentStatus)

	if r.CustomerEmail != "" {
		filters = append(filters, gDto.Where(model.TableName, model.FieldCustomerEmail, gDto.FilterOperatorLike, r.CustomerEmail))
	}

	return gDto.And(filters...)
}

type BookingResponse struct {
	ID               string  `json:"id"`
	CustomerName     string  `json:"customer_name"`
	CustomerEmail    string  `json:"customer_email"`
	CustomerPhone    string  `json:"customer_phone"`
	SessionDate      string  `json:"session_date"`
	SessionTime      string  `json:"session_time"`
	ServiceType      string  `json:"service_type"`
	BookingType      string  `json:"booking_type"`
	GuestCount       int     `json:"guest_count"`
	DurationMinutes  int     `json:"duration_minutes"`
	PriceAmount      int64   `json:"price_amount"`
	DiscountAmount   int64   `json:"discount_amount"`
	FinalAmount      int64   `json:"final_amount"`
	RefundedAmount   int64   `json:"refunded_amount"`
	PaymentMethod    string  `json:"payment_method"`
	PaymentStatus    string  `json:"payment_status"`
	BookingStatus    string  `json:"booking_status"`
	SpecialRequests  string  `json:"special_requests"`
	SlotID           string  `json:"slot_id"`
	PaymentSessionID *string `json:"payment_session_id"`
	VoucherCode      *string `json:"voucher_code"`
	CancelledAt      *string `json:"cancelled_at"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.CustomerName = m.CustomerName
	r.CustomerEmail = m.CustomerEmail
	r.CustomerPhone = m.CustomerPhone
	r.SessionDate = m.SessionDate.Format(constant.DayFormat)
	r.SessionTime = m.SessionTime
	r.ServiceType = m.ServiceType
	r.BookingType = m.BookingType
	r.GuestCount = m.GuestCount
	r.DurationMinutes = m.DurationMinutes
	r.PriceAmount = m.PriceAmount
	r.DiscountAmount = m.DiscountAmount
	r.FinalAmount = m.FinalAmount
	r.RefundedAmount = m.RefundedAmount
	r.PaymentMethod = m.PaymentMethod
	r.PaymentStatus = m.PaymentStatus
	r.BookingStatus = m.BookingStatus
	r.SpecialRequests = m.SpecialRequests
	r.SlotID = m.SlotID
	r.PaymentSessionID = m.PaymentSessionID
	r.VoucherCode = m.VoucherCode

	if m.CancelledAt != nil {
		cancelledAt := timezone.Format(*m.CancelledAt, constant.DateFormat)
		r.CancelledAt = &cancelledAt
	}

	r.Metadata = gDto.NewMetadata(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type CancelResponse struct {
	BookingID      string `json:"booking_id"`
	SlotsFreed     int    `json:"slots_freed"`
	TokensRefunded int    `json:"tokens_refunded"`
	TokenRefunded  bool   `json:"token_refunded"`
}
