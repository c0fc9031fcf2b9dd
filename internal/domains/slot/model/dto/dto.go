package dto

import (
	"wellness/internal/domains/slot/model"
	"wellness/shared"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
)

type GetSlotsRequest struct {
	Date        string `json:"date"         validate:"omitempty,datetime=2006-01-02"`
	ServiceType string `json:"service_type" validate:"omitempty,oneof=sauna ice_bath combined"`
	Available   *bool  `json:"available"    validate:"omitempty"`
}

// Filter turns the request into a filter group over time_slots.
func (r GetSlotsRequest) Filter() gDto.FilterGroup {
	filters := []any{}

	if r.Date != "" {
		filters = append(filters, gDto.Eq(model.TableName, model.FieldSlotDate, r.Date))
	}

	if r.ServiceType != "" {
		filters = append(filters, gDto.Eq(model.TableName, model.FieldServiceType, r.ServiceType))
	}

	if r.Available != nil {
		filters = append(filters, gDto.Eq(model.TableName, model.FieldIsAvailable, *r.Available))
	}

	return gDto.And(filters...)
}

type AvailabilityRequest struct {
	Date        string `json:"date"         validate:"required,datetime=2006-01-02"`
	ServiceType string `json:"service_type" validate:"required,oneof=sauna ice_bath combined"`
}

type SlotResponse struct {
	ID          string `json:"id"`
	SlotDate    string `json:"slot_date"`
	SlotTime    string `json:"slot_time"`
	ServiceType string `json:"service_type"`
	Capacity    int    `json:"capacity"`
	BookedCount int    `json:"booked_count"`
	Remaining   int    `json:"remaining"`
	IsPrivate   bool   `json:"is_private"`
	IsAvailable bool   `json:"is_available"`
	gDto.Metadata
}

func (r *SlotResponse) FromModel(m model.TimeSlot) {
	r.ID = m.ID
	r.SlotDate = m.SlotDate.Format(constant.DayFormat)
	r.SlotTime = m.SlotTime
	r.ServiceType = m.ServiceType
	r.Capacity = m.Capacity
	r.BookedCount = m.BookedCount
	r.Remaining = m.Remaining()
	r.IsPrivate = m.IsPrivate
	r.IsAvailable = m.IsAvailable
	r.Metadata = gDto.NewMetadata(m.Metadata)
}

type GetSlotsResponse struct {
	Slots     []SlotResponse `json:"slots"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetSlotsResponse) FromModels(models []model.TimeSlot, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Slots = make([]SlotResponse, len(models))
	for i, mod := range models {
		r.Slots[i].FromModel(mod)
	}
}

type SlotAvailability struct {
	SlotTime  string `json:"slot_time"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	IsPrivate bool   `json:"is_private"`
	Available bool   `json:"available"`
}

// AvailabilityResponse lists the slots of one day that already exist. A time with no entry has
// never been booked and is fully open.
type AvailabilityResponse struct {
	Date            string             `json:"date"`
	ServiceType     string             `json:"service_type"`
	DefaultCapacity int                `json:"default_capacity"`
	Slots           []SlotAvailability `json:"slots"`
}

func (r *AvailabilityResponse) FromModels(models []model.TimeSlot) {
	r.Slots = make([]SlotAvailability, len(models))
	for i, m := range models {
		r.Slots[i] = SlotAvailability{
			SlotTime:  m.SlotTime,
			Capacity:  m.Capacity,
			Remaining: m.Remaining(),
			IsPrivate: m.IsPrivate,
			Available: m.IsAvailable,
		}
	}
}
