package sitesearch

// PaginationView is the derived state of the paging control.
type PaginationView struct {
	// RangeStart is the 1-based index of the first item on the page.
	RangeStart int
	// RangeEnd is the 1-based index of the last item on the page.
	RangeEnd    int
	PrevEnabled bool
	NextEnabled bool
}

// ComputeView derives the visible range and button state. offset is a page index.
//
// Next stays enabled while offset*pageSize does not exceed totalCount, so it is
// disabled only once the start of the current page is already past the total.
// Zero-result pages never show the control, see render.
func ComputeView(offset, pageSize int, totalCount int64, itemsReturned int) PaginationView {
	first := offset * pageSize
	return PaginationView{
		RangeStart:  first + 1,
		RangeEnd:    first + itemsReturned,
		PrevEnabled: offset > 0,
		NextEnabled: int64(first) <= totalCount,
	}
}
