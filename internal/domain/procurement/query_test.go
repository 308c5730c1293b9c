package procurement

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparesuite/backend/internal/domain/shared"
)

func TestBuildOrderQuery_Defaults(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{})
	require.NoError(t, err)

	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 10, query.Limit)
	assert.Equal(t, 0, query.Offset())
	assert.Nil(t, query.Status)
	assert.Nil(t, query.SupplierID)
	assert.Empty(t, query.Search)
}

func TestBuildOrderQuery_NegativePagination(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Page: -3, Limit: -10})
	require.NoError(t, err)
	assert.Equal(t, 1, query.Page)
	assert.Equal(t, 10, query.Limit)
}

func TestBuildOrderQuery_Offset(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Page: 3, Limit: 25})
	require.NoError(t, err)
	assert.Equal(t, 50, query.Offset())
}

func TestBuildOrderQuery_RequiresTenant(t *testing.T) {
	_, err := BuildOrderQuery(uuid.Nil, OrderQueryParams{})
	require.Error(t, err)
}

func TestBuildOrderQuery_Status(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Status: "sent"})
	require.NoError(t, err)
	require.NotNil(t, query.Status)
	assert.Equal(t, OrderStatusSent, *query.Status)

	_, err = BuildOrderQuery(uuid.New(), OrderQueryParams{Status: "shipped"})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ARGUMENT", domainErr.Code)
}

func TestBuildOrderQuery_SupplierID(t *testing.T) {
	supplierID := uuid.New()
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{SupplierID: supplierID.String()})
	require.NoError(t, err)
	require.NotNil(t, query.SupplierID)
	assert.Equal(t, supplierID, *query.SupplierID)

	_, err = BuildOrderQuery(uuid.New(), OrderQueryParams{SupplierID: "not-a-uuid"})
	assert.Error(t, err, "malformed supplier id must fail the whole call")
}

func TestBuildOrderQuery_Dates(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{
		DateFrom: "2026-01-01",
		DateTo:   "2026-01-31",
	})
	require.NoError(t, err)
	require.NotNil(t, query.DateFrom)
	require.NotNil(t, query.DateTo)

	// DateTo is inclusive: pushed to the very end of the day
	assert.Equal(t, 31, query.DateTo.Day())
	assert.Equal(t, 23, query.DateTo.Hour())

	_, err = BuildOrderQuery(uuid.New(), OrderQueryParams{DateFrom: "01/02/2026"})
	assert.Error(t, err)

	_, err = BuildOrderQuery(uuid.New(), OrderQueryParams{DateTo: "yesterday"})
	assert.Error(t, err)
}

func TestBuildOrderQuery_AcceptsRFC3339(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{DateFrom: "2026-01-15T08:30:00Z"})
	require.NoError(t, err)
	assert.Equal(t, time.January, query.DateFrom.Month())
}

func TestBuildOrderQuery_SearchEscaped(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Search: "50%_off\\sale"})
	require.NoError(t, err)
	assert.Equal(t, `50\%\_off\\sale`, query.Search)
}

func TestBuildOrderQuery_SearchTruncated(t *testing.T) {
	long := strings.Repeat("a", 250)
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Search: long})
	require.NoError(t, err)
	assert.Len(t, query.Search, 100)
}

func TestBuildOrderQuery_SearchTruncatesOnRuneBoundary(t *testing.T) {
	// 120 three-byte runes: a byte-wise cut at 100 would split one in half
	long := strings.Repeat("軸", 120)
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{Search: long})
	require.NoError(t, err)

	assert.True(t, utf8.ValidString(query.Search))
	assert.Equal(t, 100, utf8.RuneCountInString(query.Search))
}

func TestBuildOrderQuery_TimestampDateToKeptAsGiven(t *testing.T) {
	query, err := BuildOrderQuery(uuid.New(), OrderQueryParams{DateTo: "2026-01-15T08:30:00Z"})
	require.NoError(t, err)
	require.NotNil(t, query.DateTo)

	// only date-only upper bounds get pushed to end of day
	want := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)
	assert.True(t, query.DateTo.Equal(want))
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PO-(1)", `PO-(1)`},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, EscapeLike(tt.in))
		})
	}
}
