package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/crawl"
)

// Run executes the history list command.
func (c *HistoryListCmd) Run(deps *Dependencies) error {
	filter := dealrater.ReportFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Brand != "" {
		filter.Brand = &c.Brand
	}
	if c.URL != "" {
		filter.URL = &c.URL
	}

	reports, err := deps.Reports.FindReports(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(deps.Stdout, "No reports found. Use 'dealrater rate --save' to create one.")
		return nil
	}

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	for _, r := range reports {
		brand := r.Brand
		if brand == "" {
			brand = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d listings\t%s\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), brand, len(r.Listings), crawl.TruncateURL(r.URL, 60))
	}
	return tw.Flush()
}

// Run executes the history show command.
func (c *HistoryShowCmd) Run(deps *Dependencies) error {
	report, err := deps.Reports.FindReportByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, report)
	}

	fmt.Fprintf(deps.Stdout, "%s\n", report.URL)
	fmt.Fprintf(deps.Stdout, "Rated %s, %d listings, market average %s\n\n",
		report.CreatedAt.Format("2006-01-02 15:04"), len(report.Listings), crawl.FormatPrice(report.MarketAverage))

	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tPRICE\tMILEAGE\tTITLE")
	for _, l := range report.Listings {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", l.Score, crawl.FormatPrice(l.NumPrice), crawl.FormatMileage(l.Mileage), l.Title)
	}
	return tw.Flush()
}

// Run executes the history delete command.
func (c *HistoryDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Reports.DeleteReport(deps.Ctx, c.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Deleted report %s\n", c.ID)
	return nil
}
