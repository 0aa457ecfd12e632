package analysis

// RoleFilterAll disables role filtering in FilterPage.
const RoleFilterAll = "all"

// DefaultPageSize matches the dashboard table.
const DefaultPageSize = 10

// Page is one slice of a filtered exposure list.
type Page struct {
	Exposures  []Exposure `json:"exposures"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
	TotalCount int        `json:"totalCount"`
}

// FilterPage filters exposures by exact role match, then slices out the
// requested page. There is always at least one page, so zero results render
// as page 1 of 1. Out-of-range page numbers are clamped.
func FilterPage(exposures []Exposure, role string, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	filtered := exposures
	if role != "" && role != RoleFilterAll {
		filtered = make([]Exposure, 0)
		for _, exp := range exposures {
			if exp.Role == role {
				filtered = append(filtered, exp)
			}
		}
	}

	totalPages := (len(filtered) + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(filtered) {
		start = len(filtered)
	}
	if end > len(filtered) {
		end = len(filtered)
	}

	return Page{
		Exposures:  filtered[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		TotalCount: len(filtered),
	}
}
