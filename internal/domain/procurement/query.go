package procurement

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sparesuite/backend/internal/domain/shared"
)

const (
	// maxSearchLength caps free-text search input before it reaches the store
	maxSearchLength = 100

	defaultPage  = 1
	defaultLimit = 10
)

// OrderQueryParams is the raw, caller-supplied filter input
type OrderQueryParams struct {
	Status     string
	SupplierID string
	Category   string
	DateFrom   string
	DateTo     string
	Search     string
	Page       int
	Limit      int
}

// OrderQuery is a validated, store-ready query. It is always tenant-scoped;
// BuildOrderQuery is the only way to construct one.
type OrderQuery struct {
	TenantID   uuid.UUID
	Status     *OrderStatus
	SupplierID *uuid.UUID
	Category   string
	DateFrom   *time.Time
	DateTo     *time.Time
	Search     string // already length-capped and LIKE-escaped
	Page       int
	Limit      int
}

// Offset returns the row offset for the current page
func (q OrderQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// BuildOrderQuery validates raw filter parameters into an OrderQuery.
// Any malformed id, date, or status fails the whole call with
// INVALID_ARGUMENT; nothing is silently coerced. Pagination falls back to
// defaults (page 1, limit 10) when missing or non-positive.
func BuildOrderQuery(tenantID uuid.UUID, params OrderQueryParams) (OrderQuery, error) {
	if tenantID == uuid.Nil {
		return OrderQuery{}, shared.NewInvalidArgument("Tenant ID is required")
	}

	query := OrderQuery{
		TenantID: tenantID,
		Category: params.Category,
		Page:     params.Page,
		Limit:    params.Limit,
	}
	if query.Page < 1 {
		query.Page = defaultPage
	}
	if query.Limit < 1 {
		query.Limit = defaultLimit
	}

	if params.Status != "" {
		status, err := ParseOrderStatus(params.Status)
		if err != nil {
			return OrderQuery{}, err
		}
		query.Status = &status
	}

	if params.SupplierID != "" {
		supplierID, err := uuid.Parse(params.SupplierID)
		if err != nil {
			return OrderQuery{}, shared.NewInvalidArgument("Invalid supplier ID format")
		}
		query.SupplierID = &supplierID
	}

	if params.DateFrom != "" {
		from, _, err := parseDate(params.DateFrom)
		if err != nil {
			return OrderQuery{}, shared.NewInvalidArgument("Invalid dateFrom value")
		}
		query.DateFrom = &from
	}
	if params.DateTo != "" {
		to, dateOnly, err := parseDate(params.DateTo)
		if err != nil {
			return OrderQuery{}, shared.NewInvalidArgument("Invalid dateTo value")
		}
		// inclusive upper bound: push date-only values to end of day;
		// full timestamps are taken as given
		if dateOnly {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		query.DateTo = &to
	}

	if params.Search != "" {
		query.Search = EscapeLike(truncateRunes(params.Search, maxSearchLength))
	}

	return query, nil
}

// EscapeLike escapes LIKE/ILIKE metacharacters so user input matches
// literally instead of acting as a pattern.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// parseDate accepts date-only and RFC3339 timestamps, reporting which form
// the input took
func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	return t, false, err
}

// truncateRunes caps s at max runes without splitting a multi-byte rune
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// normalizeEnum uppercases an enum value so handlers can pass either case
func normalizeEnum(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
