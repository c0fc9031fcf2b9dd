package dto_test

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wellness/shared/constant"
	"wellness/shared/dto"
	"wellness/shared/model"
	"wellness/shared/timezone"
)

func TestNewMetadata(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	modifiedAt := createdAt.Add(48 * time.Hour)

	got := dto.NewMetadata(model.Metadata{
		CreatedAt:  createdAt,
		ModifiedAt: modifiedAt,
		CreatedBy:  "system",
		ModifiedBy: "staff-1",
	})

	assert.Equal(t, dto.Metadata{
		CreatedAt:  timezone.Format(createdAt, constant.DateFormat),
		ModifiedAt: timezone.Format(modifiedAt, constant.DateFormat),
		CreatedBy:  "system",
		ModifiedBy: "staff-1",
	}, got)
}

func TestQueryParams_FromRequest(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    map[string]string
		defaultRequest bool
		expected       dto.QueryParams
	}{
		{
			name: "with all valid parameters",
			queryParams: map[string]string{
				"page":     "2",
				"limit":    "20",
				"sort_by":  "name",
				"sort_dir": "ASC",
			},
			defaultRequest: false,
			expected: dto.QueryParams{
				Page:    2,
				Limit:   20,
				SortBy:  "name",
				SortDir: "ASC",
			},
		},
		{
			name:           "with default request enabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name:           "with default request disabled and no parameters",
			queryParams:    map[string]string{},
			defaultRequest: false,
			expected: dto.QueryParams{
				Page:    0,
				Limit:   0,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with invalid page parameter",
			queryParams: map[string]string{
				"page": "invalid",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with negative page parameter",
			queryParams: map[string]string{
				"page": "-1",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with zero page parameter",
			queryParams: map[string]string{
				"page": "0",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage, // Should use default
				Limit:   constant.DefaultValueLimit,
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with invalid limit parameter",
			queryParams: map[string]string{
				"limit": "invalid",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with negative limit parameter",
			queryParams: map[string]string{
				"limit": "-10",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    constant.DefaultValuePage,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "",
				SortDir: "",
			},
		},
		{
			name: "with limit above the maximum",
			queryParams: map[string]string{
				"limit": "5000",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:  constant.DefaultValuePage,
				Limit: constant.MaxValueLimit,
			},
		},
		{
			name: "with partial parameters and defaults enabled",
			queryParams: map[string]string{
				"page":    "3",
				"sort_by": "customer_email",
			},
			defaultRequest: true,
			expected: dto.QueryParams{
				Page:    3,
				Limit:   constant.DefaultValueLimit, // Should use default
				SortBy:  "customer_email",
				SortDir: "", // Empty when not provided
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create a URL with query parameters
			baseURL := "http://example.com/test"
			u, err := url.Parse(baseURL)
			if err != nil {
				t.Fatalf("failed to parse URL: %v", err)
			}

			// Add query parameters
			query := u.Query()
			for key, value := range tt.queryParams {
				query.Set(key, value)
			}
			u.RawQuery = query.Encode()

			// Create HTTP request
			req, err := http.NewRequest("GET", u.String(), nil)
			if err != nil {
				t.Fatalf("failed to create request: %v", err)
			}

			// Test the method
			queryParams := &dto.QueryParams{}
			queryParams.FromRequest(req, tt.defaultRequest)

			// Verify results
			if queryParams.Page != tt.expected.Page {
				t.Errorf("expected Page to be %d, got %d", tt.expected.Page, queryParams.Page)
			}
			if queryParams.Limit != tt.expected.Limit {
				t.Errorf("expected Limit to be %d, got %d", tt.expected.Limit, queryParams.Limit)
			}
			if queryParams.SortBy != tt.expected.SortBy {
				t.Errorf("expected SortBy to be %s, got %s", tt.expected.SortBy, queryParams.SortBy)
			}
			if queryParams.SortDir != tt.expected.SortDir {
				t.Errorf("expected SortDir to be %s, got %s", tt.expected.SortDir, queryParams.SortDir)
			}
		})
	}
}

func TestSortDirectionConstants(t *testing.T) {
	if dto.SortDirAsc != "ASC" {
		t.Errorf("expected SortDirAsc to be 'ASC', got %s", dto.SortDirAsc)
	}
	if dto.SortDirDesc != "DESC" {
		t.Errorf("expected SortDirDesc to be 'DESC', got %s", dto.SortDirDesc)
	}
}

func TestQueryParams_RestrictSort(t *testing.T) {
	q := dto.QueryParams{SortBy: "session_date; DROP TABLE bookings", SortDir: dto.SortDirAsc}
	q.RestrictSort("session_date", "created_at")

	assert.Empty(t, q.SortBy)
	assert.Empty(t, q.SortDir)

	q = dto.QueryParams{SortBy: "session_date", SortDir: dto.SortDirAsc}
	q.RestrictSort("session_date", "created_at")

	assert.Equal(t, "session_date", q.SortBy)
}

func TestFilterGroup_GetWhereClause(t *testing.T) {
	group := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "slot_date", Value: "2025-03-10", Operator: dto.FilterOperatorEq, Table: "time_slots"},
			dto.Filter{Field: "service_type", Value: []string{"sauna", "combined"}, Operator: dto.FilterOperatorIn},
			dto.FilterGroup{
				Operator: dto.FilterGroupOperatorOr,
				Filters: []any{
					dto.Filter{Field: "expires_at", Operator: dto.FilterIsNull},
					dto.Filter{Field: "expires_at", ArgName: "as_of", Value: "2025-03-10", Operator: dto.FilterOperatorGreaterEq},
				},
			},
		},
	}

	where, args := group.GetWhereClause()

	assert.Equal(t, "(time_slots.slot_date = :slot_date AND service_type IN (:service_type_0, :service_type_1) AND (expires_at IS NULL OR expires_at >= :as_of))", where)
	assert.Equal(t, map[string]any{
		"slot_date":      "2025-03-10",
		"service_type_0": "sauna",
		"service_type_1": "combined",
		"as_of":          "2025-03-10",
	}, args)
}

func TestFilterGroup_DefaultsToAnd(t *testing.T) {
	group := dto.FilterGroup{Filters: []any{
		dto.Eq("bookings", "id", "b-1"),
		dto.Where("bookings", "payment_status", dto.FilterOperatorNotEq, "paid"),
	}}

	where, _ := group.GetWhereClause()

	assert.Equal(t, "(bookings.id = :id AND bookings.payment_status != :payment_status)", where)
}

func TestFilter_EmptyInMatchesNothing(t *testing.T) {
	group := dto.And(
		dto.Eq("bookings", "customer_email", "ada@example.com"),
		dto.Where("bookings", "service_type", dto.FilterOperatorIn, []string{}),
	)

	where, args := group.GetWhereClause()

	assert.Equal(t, "(bookings.customer_email = :customer_email AND FALSE)", where)
	assert.Equal(t, map[string]any{"customer_email": "ada@example.com"}, args)
}

func TestFilterGroup_SkipsUnknownOperators(t *testing.T) {
	group := dto.And(dto.Where("bookings", "notes", "regex", "x"), dto.Eq("bookings", "id", "b-1"))

	where, _ := group.GetWhereClause()

	assert.Equal(t, "(bookings.id = :id)", where)
}
