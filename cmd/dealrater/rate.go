package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/crawl"
	"github.com/fwojciec/dealrater/fs"
)

// Run executes the rate command.
func (c *RateCmd) Run(deps *Dependencies) error {
	if c.Concurrency > 0 {
		deps.Batch.Concurrency = c.Concurrency
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			if event.Total > 1 {
				fmt.Fprintf(deps.Stderr, "Rating %d pages\n", event.Total)
			}
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %d listings\n",
				event.Completed, event.Total, crawl.TruncateURL(event.URL, 80), event.Listings)
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		case crawl.ProgressFinished:
		}
	}

	reports, err := deps.Batch.RateAll(deps.Ctx, c.URLs, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}
	if len(reports) == 0 {
		err := fmt.Errorf("no pages could be rated")
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}
	if deps.Batch.Filter != nil {
		fmt.Fprintf(deps.Stderr, "Rated %d distinct listings\n", deps.Batch.Filter.Len())
	}

	if c.Save {
		for _, r := range reports {
			if err := deps.Reports.CreateReport(deps.Ctx, r); err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
				return err
			}
			fmt.Fprintf(deps.Stderr, "  saved %s as %s\n", r.URL, r.ID)
		}
	}

	if c.Output != "" {
		if err := fs.WriteJSON(c.Output, reports); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %v\n", err)
			return err
		}
		fmt.Fprintf(deps.Stderr, "Wrote %d reports to %s\n", len(reports), c.Output)
		return nil
	}

	return writeJSON(deps.Stdout, reports)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
