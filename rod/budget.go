package rod

// PageBudget counts the pages one browser has served and decides when the
// browser may be replaced: once max pages were served and none of them is
// still open.
//
// PageBudget is not safe for concurrent use; BrowserManager guards it with
// its mutex.
type PageBudget struct {
	max    int64
	served int64
	open   int
}

// NewPageBudget returns a budget of pages per browser.
func NewPageBudget(pages int64) *PageBudget {
	return &PageBudget{max: pages}
}

// Due reports whether the browser has used up its pages and can be
// replaced without closing a page still in use.
func (b *PageBudget) Due() bool {
	return b.served >= b.max && b.open == 0
}

// Acquire counts a page handed out.
func (b *PageBudget) Acquire() {
	b.served++
	b.open++
}

// Release counts a page closed. Extra releases are ignored.
func (b *PageBudget) Release() {
	if b.open > 0 {
		b.open--
	}
}

// Renew starts the count over for a fresh browser. Pages still open are
// kept in the count.
func (b *PageBudget) Renew() {
	b.served = 0
}

// Served returns the pages handed out since the last Renew.
func (b *PageBudget) Served() int64 { return b.served }

// Open returns the pages not yet released.
func (b *PageBudget) Open() int { return b.open }
