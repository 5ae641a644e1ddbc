package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/dealrater"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ dealrater.ReportService = (*ReportService)(nil)

// ReportService implements dealrater.ReportService using SQLite.
type ReportService struct {
	db *DB
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db}
}

// CreateReport stores report and its listings in one transaction.
// ID is always assigned; CreatedAt is set to now when zero.
func (s *ReportService) CreateReport(ctx context.Context, report *dealrater.Report) error {
	if err := report.Validate(); err != nil {
		return err
	}

	report.ID = uuid.New().String()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	report.CreatedAt = report.CreatedAt.UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO reports (id, url, brand, content_hash, market_average, listing_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, report.ID, report.URL, report.Brand, report.ContentHash, report.MarketAverage,
		len(report.Listings), report.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	for i := range report.Listings {
		if err := insertListing(ctx, tx, report.ID, i, &report.Listings[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func insertListing(ctx context.Context, tx *sql.Tx, reportID string, position int, l *dealrater.ScoredListing) error {
	var features sql.NullString
	if l.Features != nil {
		data, err := json.Marshal(l.Features)
		if err != nil {
			return fmt.Errorf("failed to encode features: %w", err)
		}
		features = sql.NullString{String: string(data), Valid: true}
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO listings (report_id, position, title, price, link, image, num_price,
			year, mileage, features, warranty, description, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, reportID, position, l.Title, l.Price, l.Link, l.Image, l.NumPrice,
		nullInt(l.Year), nullInt(l.Mileage), features, l.Warranty, l.Description, l.Score)
	return err
}

// FindReportByID retrieves a report with its listings in page order.
func (s *ReportService) FindReportByID(ctx context.Context, id string) (*dealrater.Report, error) {
	report, err := scanReport(s.db.QueryRowContext(ctx,
		"SELECT "+reportColumns+" FROM reports WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, dealrater.Errorf(dealrater.ENOTFOUND, "report not found")
	}
	if err != nil {
		return nil, err
	}

	if report.Listings, err = s.findListings(ctx, id); err != nil {
		return nil, err
	}

	return report, nil
}

func (s *ReportService) findListings(ctx context.Context, reportID string) ([]dealrater.ScoredListing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT title, price, link, image, num_price, year, mileage, features,
			warranty, description, score
		FROM listings
		WHERE report_id = ?
		ORDER BY position
	`, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := []dealrater.ScoredListing{}
	for rows.Next() {
		var l dealrater.ScoredListing
		var year, mileage sql.NullInt64
		var features sql.NullString

		if err := rows.Scan(&l.Title, &l.Price, &l.Link, &l.Image, &l.NumPrice,
			&year, &mileage, &features, &l.Warranty, &l.Description, &l.Score); err != nil {
			return nil, err
		}

		l.Year = intPtr(year)
		l.Mileage = intPtr(mileage)
		if features.Valid {
			if err := json.Unmarshal([]byte(features.String), &l.Features); err != nil {
				return nil, fmt.Errorf("failed to parse features: %w", err)
			}
		}

		listings = append(listings, l)
	}

	return listings, rows.Err()
}

// FindReports retrieves reports matching the filter, newest first.
// Listings are not loaded.
func (s *ReportService) FindReports(ctx context.Context, filter dealrater.ReportFilter) ([]*dealrater.Report, error) {
	q := newReportQuery()
	q.where("id = ?", filter.ID)
	q.where("url = ?", filter.URL)
	q.where("brand = ? COLLATE NOCASE", filter.Brand)
	q.page(filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, q.String(), q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*dealrater.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// DeleteReport permanently removes a report and its listings.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return dealrater.Errorf(dealrater.ENOTFOUND, "report not found")
	}

	return nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
