package models

// Page is the list envelope the backend returns for paged resources. The
// backend is not consistent about which counters it fills, so all known
// spellings are decoded and resolved by paging.Resolve.
type Page[T any] struct {
	Items       []T `json:"items"`
	Page        int `json:"page"`
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	TotalItems  int `json:"total_items"`
	TotalPages  int `json:"total_pages"`
	Pages       int `json:"pages"`
	PageCount   int `json:"page_count"`
}
