package docs_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"

	_ "wellness/docs"
)

func TestSwaggerDocument(t *testing.T) {
	raw, err := swag.ReadDoc()
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]map[string]any `json:"paths"`
	}

	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "Wellness Booking API", doc.Info.Title)
	assert.Contains(t, doc.Paths, "/v1/bookings/{id}/refund")
	assert.Contains(t, doc.Paths["/v1/bookings"], "post")
	assert.Contains(t, doc.Paths, "/v1/payments/webhook")
}
