// Package bloom provides listing deduplication using Bloom filters.
package bloom

import (
	"strconv"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/dealrater"
)

var _ dealrater.ListingFilter = (*ListingFilter)(nil)

// ListingFilter detects listings already seen on earlier pages of a batch.
// A listing never visited may be reported as seen with probability fpRate;
// a listing from an earlier page is always reported.
// ListingFilter is safe for concurrent use.
type ListingFilter struct {
	mu sync.Mutex
	bf *bloom.BloomFilter
}

// NewListingFilter creates a ListingFilter sized for n listings with the
// given false positive rate.
func NewListingFilter(n uint, fpRate float64) *ListingFilter {
	return &ListingFilter{bf: bloom.NewWithEstimates(n, fpRate)}
}

// VisitPage reports which listings on page were seen on earlier pages and
// then records the page. The whole page is tested before any of it is
// added, so identical cards on one page are all kept.
func (f *ListingFilter) VisitPage(page []dealrater.Listing) []bool {
	keys := make([]string, len(page))
	for i := range page {
		keys[i] = Fingerprint(&page[i])
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make([]bool, len(keys))
	for i, key := range keys {
		seen[i] = f.bf.TestString(key)
	}
	for _, key := range keys {
		f.bf.AddString(key)
	}
	return seen
}

// Len estimates how many distinct listings were visited.
func (f *ListingFilter) Len() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.bf.ApproximatedSize())
}

// Fingerprint identifies a listing by title, price and link. Whitespace
// and case differences in the title do not change the fingerprint.
func Fingerprint(l *dealrater.Listing) string {
	title := strings.ToLower(strings.Join(strings.Fields(l.Title), " "))
	h := xxhash.New()
	_, _ = h.WriteString(title)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strings.TrimSpace(l.Price))
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strings.TrimSpace(l.Link))
	return strconv.FormatUint(h.Sum64(), 16)
}
