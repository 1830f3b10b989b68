package domain

// Paginated is one window over an in-memory slice. Pages are 1-based.
type Paginated[T any] struct {
	Items       []T  `json:"items"`
	TotalItems  int  `json:"total_items"`
	TotalPages  int  `json:"total_pages"`
	CurrentPage int  `json:"current_page"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// Paginate slices items into the requested page window. The page number is
// clamped into [1, totalPages]; an empty input yields page 1 of 0.
func Paginate[T any](items []T, page, perPage int) Paginated[T] {
	if perPage < 1 {
		perPage = 1
	}

	totalItems := len(items)
	totalPages := (totalItems + perPage - 1) / perPage

	current := page
	if current < 1 {
		current = 1
	}
	if totalPages > 0 && current > totalPages {
		current = totalPages
	}

	start := (current - 1) * perPage
	end := start + perPage
	if start > totalItems {
		start = totalItems
	}
	if end > totalItems {
		end = totalItems
	}

	return Paginated[T]{
		Items:       items[start:end],
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: current,
		HasNext:     current < totalPages,
		HasPrev:     current > 1,
	}
}
