package model

// PageState is the console's view of a paged list. It always satisfies
// totalPages = ceil(totalItems/pageSize) and keeps page inside
// [1, max(totalPages, 1)].
type PageState struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total"`
	TotalPages int `json:"pages"`
}

// NewPageState computes a consistent page state, clamping page against
// the total reported by the records service.
func NewPageState(page, pageSize, totalItems int) PageState {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}
	totalPages := (totalItems + pageSize - 1) / pageSize

	maxPage := totalPages
	if maxPage < 1 {
		maxPage = 1
	}
	if page > maxPage {
		page = maxPage
	}
	if page < 1 {
		page = 1
	}

	return PageState{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// Clamped reports whether the requested page had to be pulled back
// because the total shrank underneath it.
func (s PageState) Clamped(requestedPage int) bool {
	return requestedPage != s.Page
}
