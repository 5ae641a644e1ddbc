package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/dealrater"
	"github.com/fwojciec/dealrater/bloom"
	main "github.com/fwojciec/dealrater/cmd/dealrater"
	"github.com/fwojciec/dealrater/crawl"
	"github.com/fwojciec/dealrater/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeRater(failing ...string) *mock.Rater {
	return &mock.Rater{
		RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
			for _, f := range failing {
				if f == url {
					return nil, errors.New("navigation timeout")
				}
			}
			return &dealrater.Report{
				URL:   url,
				Brand: "Honda",
				Listings: []dealrater.ScoredListing{
					{Listing: dealrater.Listing{Title: "2019 Civic", NumPrice: 17000}, Score: 60},
				},
			}, nil
		},
	}
}

func TestRateCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints reports as JSON", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch:  &crawl.Batch{Rater: fakeRater()},
		}

		cmd := &main.RateCmd{URLs: []string{"https://a.example.com", "https://b.example.com"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		var reports []dealrater.Report
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
		require.Len(t, reports, 2)
		assert.Equal(t, "https://a.example.com", reports[0].URL)
		assert.Equal(t, "https://b.example.com", reports[1].URL)
		assert.Contains(t, stderr.String(), "Rating 2 pages")
		assert.Contains(t, stderr.String(), "1 listings")
	})

	t.Run("skips failed pages", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch:  &crawl.Batch{Rater: fakeRater("https://down.example.com")},
		}

		cmd := &main.RateCmd{URLs: []string{"https://down.example.com", "https://up.example.com"}}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "skip https://down.example.com")
		var reports []dealrater.Report
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
		require.Len(t, reports, 1)
		assert.Equal(t, "https://up.example.com", reports[0].URL)
	})

	t.Run("fails when every page fails", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch:  &crawl.Batch{Rater: fakeRater("https://down.example.com")},
		}

		cmd := &main.RateCmd{URLs: []string{"https://down.example.com"}}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
		assert.Empty(t, stdout.String())
	})

	t.Run("saves reports", func(t *testing.T) {
		t.Parallel()

		var saved []string
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, r *dealrater.Report) error {
				r.ID = "report-" + r.URL[8:9]
				saved = append(saved, r.URL)
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  stderr,
			Batch:   &crawl.Batch{Rater: fakeRater()},
			Reports: reports,
		}

		cmd := &main.RateCmd{URLs: []string{"https://a.example.com"}, Save: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"https://a.example.com"}, saved)
		assert.Contains(t, stderr.String(), "saved https://a.example.com as report-a")
		assert.Contains(t, stdout.String(), `"id": "report-a"`)
	})

	t.Run("returns save error", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch:  &crawl.Batch{Rater: fakeRater()},
			Reports: &mock.ReportService{
				CreateReportFn: func(_ context.Context, _ *dealrater.Report) error {
					return dealrater.Errorf(dealrater.EINVALID, "report URL required")
				},
			},
		}

		cmd := &main.RateCmd{URLs: []string{"https://a.example.com"}, Save: true}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: report URL required")
	})

	t.Run("writes output file", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "out", "reports.json")
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: stderr,
			Batch:  &crawl.Batch{Rater: fakeRater()},
		}

		cmd := &main.RateCmd{URLs: []string{"https://a.example.com"}, Output: out}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stdout.String())
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "2019 Civic")
	})

	t.Run("applies concurrency flag", func(t *testing.T) {
		t.Parallel()

		batch := &crawl.Batch{Rater: fakeRater()}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Batch:  batch,
		}

		cmd := &main.RateCmd{URLs: []string{"https://a.example.com"}, Concurrency: 7}
		require.NoError(t, cmd.Run(deps))

		assert.Equal(t, 7, batch.Concurrency)
	})
}

func TestRateCmd_Run_Dedupe(t *testing.T) {
	t.Parallel()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: stdout,
		Stderr: stderr,
		Batch: &crawl.Batch{
			Rater:  fakeRater(),
			Filter: bloom.NewListingFilter(100, 0.001),
		},
	}

	cmd := &main.RateCmd{URLs: []string{"https://a.example.com", "https://b.example.com"}}
	err := cmd.Run(deps)

	require.NoError(t, err)
	var reports []dealrater.Report
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &reports))
	require.Len(t, reports, 2)
	assert.Len(t, reports[0].Listings, 1)
	assert.Empty(t, reports[1].Listings)
	assert.Contains(t, stderr.String(), "Rated 1 distinct listings")
}
