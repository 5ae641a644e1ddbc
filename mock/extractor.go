package mock

import "github.com/fwojciec/dealrater"

var _ dealrater.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of dealrater.Extractor.
type Extractor struct {
	ExtractFn func(html string) *dealrater.Extraction
}

func (e *Extractor) Extract(html string) *dealrater.Extraction {
	return e.ExtractFn(html)
}

var _ dealrater.ListingFilter = (*ListingFilter)(nil)

// ListingFilter is a mock implementation of dealrater.ListingFilter.
type ListingFilter struct {
	VisitPageFn func(page []dealrater.Listing) []bool
	LenFn       func() uint
}

func (f *ListingFilter) VisitPage(page []dealrater.Listing) []bool {
	return f.VisitPageFn(page)
}

func (f *ListingFilter) Len() uint {
	return f.LenFn()
}
