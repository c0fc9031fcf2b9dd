package model

import (
	"time"

	"wellness/shared/model"
)

const (
	TableName  = "time_slots"
	EntityName = "slot"

	FieldID          = "id"
	FieldSlotDate    = "slot_date"
	FieldSlotTime    = "slot_time"
	FieldServiceType = "service_type"
	FieldCapacity    = "capacity"
	FieldBookedCount = "booked_count"
	FieldIsPrivate   = "is_private"
	FieldIsAvailable = "is_available"
)

const (
	ServiceSauna    = "sauna"
	ServiceIceBath  = "ice_bath"
	ServiceCombined = "combined"
)

// Mode selects which guard applies to an occupancy change.
type Mode int

const (
	// ModeCommunal adds or removes communal guests, bounded by capacity.
	ModeCommunal Mode = iota
	// ModeClaimPrivate takes an empty slot exclusively.
	ModeClaimPrivate
	// ModeReleasePrivate gives an exclusive slot back.
	ModeReleasePrivate
	// ModeResizePrivate changes the guest count of a slot already held exclusively.
	ModeResizePrivate
)

func (m Mode) String() string {
	switch m {
	case ModeClaimPrivate:
		return "claim_private"
	case ModeReleasePrivate:
		return "release_private"
	case ModeResizePrivate:
		return "resize_private"
	default:
		return "communal"
	}
}

// Key identifies a slot. Date is 2006-01-02, Time is 15:04.
type Key struct {
	Date        string
	Time        string
	ServiceType string
}

type TimeSlot struct {
	ID          string    `db:"id"`
	SlotDate    time.Time `db:"slot_date"`
	SlotTime    string    `db:"slot_time"`
	ServiceType string    `db:"service_type"`
	Capacity    int       `db:"capacity"`
	BookedCount int       `db:"booked_count"`
	IsPrivate   bool      `db:"is_private"`
	IsAvailable bool      `db:"is_available"`
	model.Metadata
}

// Remaining is the number of communal places left, zero once the slot is private or full.
func (s TimeSlot) Remaining() int {
	if s.IsPrivate {
		return 0
	}

	return max(0, s.Capacity-s.BookedCount)
}

func (s TimeSlot) Key() Key {
	return Key{Date: s.SlotDate.Format("2006-01-02"), Time: s.SlotTime, ServiceType: s.ServiceType}
}
