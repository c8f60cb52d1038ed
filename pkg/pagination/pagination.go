package pagination

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	MinLimit     = 1
)

// Params holds validated pagination, sorting and date-range parameters
// shared by every list endpoint.
type Params struct {
	Page      int
	Limit     int
	Offset    int
	SortField string
	SortOrder string // asc or desc
	DateFrom  *time.Time
	DateTo    *time.Time
}

// OrderClause renders the sort parameters as a GORM order expression,
// falling back to the given default when no sortField was supplied or the
// field is not in the allowed set.
func (p Params) OrderClause(defaultClause string, allowed ...string) string {
	if p.SortField == "" {
		return defaultClause
	}
	for _, f := range allowed {
		if f == p.SortField {
			return p.SortField + " " + p.SortOrder
		}
	}
	return defaultClause
}

// Parse extracts and validates page/limit/sortField/sortOrder/dateFrom/dateTo
// from query parameters.
func Parse(c *gin.Context) Params {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(DefaultPage)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))

	if page < 1 {
		page = DefaultPage
	}
	if limit < MinLimit {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortOrder := strings.ToLower(c.DefaultQuery("sortOrder", "desc"))
	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	params := Params{
		Page:      page,
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortField: c.Query("sortField"),
		SortOrder: sortOrder,
	}

	if raw := c.Query("dateFrom"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			params.DateFrom = &t
		}
	}
	if raw := c.Query("dateTo"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			// Inclusive upper bound: advance to end of day
			end := t.Add(24*time.Hour - time.Nanosecond)
			params.DateTo = &end
		}
	}

	return params
}
