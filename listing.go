package dealrater

// Defaults used when a field is missing from the listing markup.
const (
	NoTitle = "No title"
	NoPrice = "No price"
)

// Placeholder values assigned to every listing. They are not derived from
// markup.
const (
	PlaceholderWarranty    = "Certified Pre-Owned"
	PlaceholderDescription = "No accidents, well maintained."
)

// Listing is the record extracted from one listing container.
//
// NumPrice is 0 both when the price is genuinely zero and when the price text
// could not be parsed. Year and Mileage are nil when not found. Features is
// nil rather than empty when no feature items were found.
type Listing struct {
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Link        string   `json:"link"`
	Image       string   `json:"image"`
	NumPrice    float64  `json:"numPrice"`
	Year        *int     `json:"year"`
	Mileage     *int     `json:"mileage"`
	Features    []string `json:"features"`
	Warranty    string   `json:"warranty"`
	Description string   `json:"description"`
}

// ScoredListing is a Listing with its deal score.
type ScoredListing struct {
	Listing
	Score int `json:"score"`
}

// Extraction holds the listings extracted from one document.
type Extraction struct {
	// Brand is the brand of the template that matched, or empty when no
	// template matched any container.
	Brand string

	Listings []Listing
}

// Extractor extracts listings from a rendered HTML document.
type Extractor interface {
	// Extract returns the listings found by the first template whose
	// container selector matches. A document that matches no template, or
	// that cannot be parsed, yields an Extraction with no listings.
	Extract(html string) *Extraction
}

// ListingFilter remembers listings across pages so the same vehicle
// advertised on several pages is rated once.
type ListingFilter interface {
	// VisitPage reports for each listing on page whether an equal listing
	// was on a page visited before, then records the page. Repeats within
	// page are not reported. Implementations may report false positives.
	VisitPage(page []Listing) []bool

	// Len estimates how many distinct listings were visited.
	Len() uint
}
