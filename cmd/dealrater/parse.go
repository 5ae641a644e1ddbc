package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/fs"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	html, err := readHTML(deps, c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
		return err
	}

	url := c.URL
	if url == "" {
		url = c.File
	}

	report := deps.Rater.RateHTML(url, html)

	if c.Output != "" {
		if err := fs.WriteReport(c.Output, report); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", dealrater.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stderr, "Wrote %d listings to %s\n", len(report.Listings), c.Output)
		return nil
	}

	return writeJSON(deps.Stdout, report)
}

// readHTML reads an HTML document from path, or from stdin when path is "-".
func readHTML(deps *Dependencies, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", dealrater.Errorf(dealrater.ENOTFOUND, "file %s not found", path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
