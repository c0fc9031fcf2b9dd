package dto

import (
	"time"

	"github.com/google/uuid"

	"wellness/internal/domains/token/model"
	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	gModel "wellness/shared/model"
	"wellness/shared/timezone"
)

type GrantTokensRequest struct {
	CustomerEmail string `json:"customer_email" validate:"required,email,max=100"`
	Tokens        int    `json:"tokens"         validate:"required,gte=1,lte=100"`
	ExpiresAt     string `json:"expires_at"     validate:"omitempty,notpast"`
	Notes         string `json:"notes"          validate:"omitempty,max=255"`
}

// ToModel builds the balance. An expiry date keeps the balance usable until the end of that day.
func (r *GrantTokensRequest) ToModel(user string) (model.TokenBalance, error) {
	var expiresAt *time.Time

	if r.ExpiresAt != "" {
		day, err := timezone.Parse(constant.DayFormat, r.ExpiresAt)
		if err != nil {
			return model.TokenBalance{}, err
		}

		end := day.AddDate(0, 0, 1)
		expiresAt = &end
	}

	return model.TokenBalance{
		ID:              uuid.NewString(),
		CustomerEmail:   model.NormalizeEmail(r.CustomerEmail),
		TokensRemaining: r.Tokens,
		ExpiresAt:       expiresAt,
		Notes:           r.Notes,
		Metadata:        gModel.NewMetadata(user),
	}, nil
}

type BalanceResponse struct {
	ID              string  `json:"id"`
	CustomerEmail   string  `json:"customer_email"`
	TokensRemaining int     `json:"tokens_remaining"`
	ExpiresAt       *string `json:"expires_at"`
	Notes           string  `json:"notes"`
	gDto.Metadata
}

func (r *BalanceResponse) FromModel(m model.TokenBalance) {
	r.ID = m.ID
	r.CustomerEmail = m.CustomerEmail
	r.TokensRemaining = m.TokensRemaining
	r.Notes = m.Notes

	if m.ExpiresAt != nil {
		expires := timezone.Format(*m.ExpiresAt, constant.DateFormat)
		r.ExpiresAt = &expires
	}

	r.Metadata = gDto.NewMetadata(m.Metadata)
}

type AvailableTokensResponse struct {
	CustomerEmail string            `json:"customer_email"`
	Total         int               `json:"total"`
	Balances      []BalanceResponse `json:"balances"`
}

func (r *AvailableTokensResponse) FromModels(email string, models []model.TokenBalance) {
	r.CustomerEmail = email
	r.Total = 0
	r.Balances = make([]BalanceResponse, len(models))

	for i, m := range models {
		r.Total += m.TokensRemaining
		r.Balances[i].FromModel(m)
	}
}
