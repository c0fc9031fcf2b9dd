package dto_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/domains/token/model"
	"wellness/internal/domains/token/model/dto"
	"wellness/shared/constant"
	gModel "wellness/shared/model"
	"wellness/shared/timezone"
)

func TestBalanceResponse_FromModel(t *testing.T) {
	expires := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)

	var res dto.BalanceResponse
	res.FromModel(model.TokenBalance{
		ID:              "bal-1",
		CustomerEmail:   "ada@example.com",
		TokensRemaining: 3,
		ExpiresAt:       &expires,
		Notes:           "spring pack",
		Metadata:        gModel.Metadata{CreatedAt: created, CreatedBy: "admin-1"},
	})

	assert.Equal(t, "bal-1", res.ID)
	assert.Equal(t, 3, res.TokensRemaining)
	require.NotNil(t, res.ExpiresAt)
	assert.Equal(t, timezone.Format(expires, constant.DateFormat), *res.ExpiresAt)
	assert.Equal(t, timezone.Format(created, constant.DateFormat), res.CreatedAt)
	assert.Equal(t, "admin-1", res.CreatedBy)
}

func TestBalanceResponse_FromModelWithoutExpiry(t *testing.T) {
	var res dto.BalanceResponse
	res.FromModel(model.TokenBalance{ID: "bal-2", TokensRemaining: 1})

	assert.Nil(t, res.ExpiresAt)
}
