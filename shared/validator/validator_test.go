package validator_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/shared/constant"
	"wellness/shared/failure"
	"wellness/shared/timezone"
	"wellness/shared/validator"
)

type sessionRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email"`
	SessionDate   string `json:"session_date"   validate:"required,notpast"`
	SessionTime   string `json:"session_time"   validate:"required,clock"`
	ServiceType   string `json:"service_type"   validate:"required,oneof=sauna ice_bath combined"`
	GuestCount    int    `json:"guest_count"    validate:"gte=1,lte=10"`
}

func validRequest() sessionRequest {
	return sessionRequest{
		CustomerEmail: "aoife@example.com",
		SessionDate:   timezone.Today().AddDate(0, 0, 1).Format(constant.DayFormat),
		SessionTime:   "18:00",
		ServiceType:   "sauna",
		GuestCount:    2,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(r *sessionRequest)
		wantErr  bool
		contains string
	}{
		{name: "valid request", mutate: func(_ *sessionRequest) {}},
		{
			name:     "today is allowed",
			mutate:   func(r *sessionRequest) { r.SessionDate = timezone.Today().Format(constant.DayFormat) },
			wantErr:  false,
			contains: "",
		},
		{
			name:     "past date",
			mutate:   func(r *sessionRequest) { r.SessionDate = "2020-01-01" },
			wantErr:  true,
			contains: "session_date must not be in the past",
		},
		{
			name:     "unparseable date",
			mutate:   func(r *sessionRequest) { r.SessionDate = "10/03/2025" },
			wantErr:  true,
			contains: "session_date must not be in the past",
		},
		{
			name:     "bad clock",
			mutate:   func(r *sessionRequest) { r.SessionTime = "6pm" },
			wantErr:  true,
			contains: "session_time must be a time in HH:MM format",
		},
		{
			name:     "too many guests",
			mutate:   func(r *sessionRequest) { r.GuestCount = 11 },
			wantErr:  true,
			contains: "guest_count must be less than or equal to 10",
		},
		{
			name:     "unknown service",
			mutate:   func(r *sessionRequest) { r.ServiceType = "steam" },
			wantErr:  true,
			contains: "service_type must be one of sauna ice_bath combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := validator.ValidateStruct(&req)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.True(t, failure.Is(err, failure.KindValidation))
			assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidateStruct_ListsEveryIssue(t *testing.T) {
	req := validRequest()
	req.CustomerEmail = "not-an-email"
	req.GuestCount = 0

	err := validator.ValidateStruct(&req)

	var fail *failure.Failure
	require.True(t, errors.As(err, &fail))
	assert.ElementsMatch(t, []string{
		"customer_email must be a valid email address",
		"guest_count must be greater than or equal to 1",
	}, fail.Fields)
}

func TestValidate(t *testing.T) {
	var req sessionRequest

	err := validator.Validate(strings.NewReader(`{"customer_email":`), &req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	err = validator.Validate(strings.NewReader(`{"customer_email":"a@b.co","unknown":1}`), &req)
	assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))

	err = validator.Validate(strings.NewReader(`{"customer_email":"a@b.co","session_date":"2020-01-01","session_time":"09:00","service_type":"sauna","guest_count":1}`), &req)
	assert.Equal(t, http.StatusUnprocessableEntity, failure.GetCode(err))
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("aoife@example.com", "required,email"))
	assert.Error(t, validator.ValidateVar("nope", "required,email"))
}
