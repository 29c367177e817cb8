package catalog

import (
	"strings"

	"github.com/fitforge/fitforge/backend/catalog-service/internal/models"
)

// DefaultPageSize is used when a query does not specify one.
const DefaultPageSize = 20

// QueryParams filters and paginates a merged catalog. An empty or absent
// filter matches everything. Pagination is 1-indexed; callers changing any
// filter are responsible for resetting to page 1.
type QueryParams struct {
	Text     string
	Facets   map[string]string
	Page     int
	PageSize int
}

// QueryResult is one page of a filtered merged catalog.
type QueryResult struct {
	Items      []models.CatalogEntry `json:"items"`
	TotalCount int                   `json:"total_count"`
	PageCount  int                   `json:"page_count"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
}

// Query filters entries by case-insensitive substring match on the display
// name and by exact facet values (conjunctive across facet names), then
// slices out the requested page. Ordering is inherited from the resolution
// pass, so results are deterministic for a fixed merged catalog.
func Query(entries []models.CatalogEntry, params QueryParams) QueryResult {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	needle := strings.ToLower(strings.TrimSpace(params.Text))

	matched := make([]models.CatalogEntry, 0, len(entries))
	for _, entry := range entries {
		if needle != "" && !strings.Contains(strings.ToLower(entry.DisplayName), needle) {
			continue
		}
		if !facetsMatch(entry, params.Facets) {
			continue
		}
		matched = append(matched, entry)
	}

	total := len(matched)
	pageCount := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return QueryResult{
		Items:      matched[start:end],
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
		PageSize:   pageSize,
	}
}

func facetsMatch(entry models.CatalogEntry, filters map[string]string) bool {
	for name, want := range filters {
		if entry.Facets[name] != want {
			return false
		}
	}
	return true
}
