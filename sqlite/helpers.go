package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/dealrater"
)

// reportColumns are the report header columns read by scanReport.
const reportColumns = "id, url, brand, content_hash, market_average, created_at"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReport reads a report header selected with reportColumns.
func scanReport(row rowScanner) (*dealrater.Report, error) {
	var report dealrater.Report
	var createdAt string
	if err := row.Scan(&report.ID, &report.URL, &report.Brand, &report.ContentHash,
		&report.MarketAverage, &createdAt); err != nil {
		return nil, err
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("report %s: bad created_at: %w", report.ID, err)
	}
	report.CreatedAt = t
	return &report, nil
}

// reportQuery builds a filtered report header query.
type reportQuery struct {
	sb   strings.Builder
	args []any
}

func newReportQuery() *reportQuery {
	q := &reportQuery{}
	q.sb.WriteString("SELECT " + reportColumns + " FROM reports WHERE 1=1")
	return q
}

// where adds the condition when v is set.
func (q *reportQuery) where(cond string, v *string) {
	if v == nil {
		return
	}
	q.sb.WriteString(" AND " + cond)
	q.args = append(q.args, *v)
}

// page orders newest first and applies positive limit and offset.
// SQLite rejects OFFSET without LIMIT, so an offset alone gets LIMIT -1.
func (q *reportQuery) page(limit, offset int) {
	q.sb.WriteString(" ORDER BY created_at DESC, rowid DESC")
	switch {
	case limit > 0:
		q.sb.WriteString(" LIMIT ?")
		q.args = append(q.args, limit)
	case offset > 0:
		q.sb.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		q.sb.WriteString(" OFFSET ?")
		q.args = append(q.args, offset)
	}
}

func (q *reportQuery) String() string { return q.sb.String() }
