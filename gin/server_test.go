package gin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/dealrater"
	dealgin "github.com/fwojciec/dealrater/gin"
	"github.com/fwojciec/dealrater/mock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func camryReport(url string) *dealrater.Report {
	year, mileage := 2020, 32000
	return &dealrater.Report{
		URL:   url,
		Brand: "Toyota",
		Listings: []dealrater.ScoredListing{{
			Listing: dealrater.Listing{
				Title:       "2020 Camry",
				Price:       "$24,000",
				NumPrice:    24000,
				Year:        &year,
				Mileage:     &mileage,
				Warranty:    dealrater.PlaceholderWarranty,
				Description: dealrater.PlaceholderDescription,
			},
			Score: 65,
		}},
	}
}

func TestServer_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("returns scored listings", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
					return camryReport(url), nil
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://toyota.example.com/used"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Listings []map[string]any `json:"listings"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Listings, 1)
		l := body.Listings[0]
		assert.Equal(t, "2020 Camry", l["title"])
		assert.Equal(t, float64(24000), l["numPrice"])
		assert.Equal(t, float64(2020), l["year"])
		assert.Equal(t, float64(32000), l["mileage"])
		assert.Nil(t, l["features"])
		assert.Equal(t, float64(65), l["score"])
	})

	t.Run("returns 400 when url is missing", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}}

		for _, body := range []string{`{}`, `{"url":""}`, `not json`, ``} {
			rec := performRequest(s.Handler(), http.MethodPost, "/scrape", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
			assert.Equal(t, "Missing URL.", rec.Body.String())
		}
	})

	t.Run("returns 500 when rating fails", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, _ string) (*dealrater.Report, error) {
					return nil, errors.New("navigation timeout")
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://slow.example.com"}`)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Scraping failed.", rec.Body.String())
	})

	t.Run("returns empty list for page without listings", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
					return &dealrater.Report{URL: url, Listings: []dealrater.ScoredListing{}}, nil
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://blank.example.com"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"listings":[]}`, rec.Body.String())
	})

	t.Run("serves cached report without rating", func(t *testing.T) {
		t.Parallel()

		cached := camryReport("https://toyota.example.com/used")
		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, _ string) (*dealrater.Report, error) {
					t.Fatal("rater should not be called")
					return nil, nil
				},
			},
			Cache: &mock.ReportCache{
				GetFn: func(url string) (*dealrater.Report, bool) {
					return cached, url == cached.URL
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://toyota.example.com/used"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "2020 Camry")
	})

	t.Run("stores and caches fresh report", func(t *testing.T) {
		t.Parallel()

		var saved, cachedURL string
		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
					return camryReport(url), nil
				},
			},
			Reports: &mock.ReportService{
				CreateReportFn: func(_ context.Context, r *dealrater.Report) error {
					saved = r.URL
					return nil
				},
			},
			Cache: &mock.ReportCache{
				GetFn: func(string) (*dealrater.Report, bool) { return nil, false },
				SetFn: func(url string, _ *dealrater.Report) { cachedURL = url },
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://toyota.example.com/used"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "https://toyota.example.com/used", saved)
		assert.Equal(t, "https://toyota.example.com/used", cachedURL)
	})

	t.Run("still answers when saving fails", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
					return camryReport(url), nil
				},
			},
			Reports: &mock.ReportService{
				CreateReportFn: func(_ context.Context, _ *dealrater.Report) error {
					return errors.New("disk full")
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodPost, "/scrape", `{"url":"https://toyota.example.com/used"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("limits requests per client", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{
				RateFn: func(_ context.Context, url string) (*dealrater.Report, error) {
					return camryReport(url), nil
				},
			},
			ScrapeLimit: 0.001,
		}
		h := s.Handler()

		first := performRequest(h, http.MethodPost, "/scrape", `{"url":"https://a.example.com"}`)
		second := performRequest(h, http.MethodPost, "/scrape", `{"url":"https://a.example.com"}`)

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("allows any origin", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}}
		req := httptest.NewRequest(http.MethodOptions, "/scrape", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()

		s.Handler().ServeHTTP(rec, req)

		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_Templates(t *testing.T) {
	t.Parallel()

	registry := dealrater.NewRegistryBuilder().
		AddBuiltins(dealrater.Template{Brand: "Toyota", Container: ".standard-inventory"}).
		Add(dealrater.Template{Brand: "Main Street Motors", Container: "article.car"}).
		Build()
	s := &dealgin.Server{Rater: &mock.Rater{}, Registry: registry}

	rec := performRequest(s.Handler(), http.MethodGet, "/templates", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body []struct {
		Brand   string `json:"brand"`
		Builtin bool   `json:"builtin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Toyota", body[0].Brand)
	assert.True(t, body[0].Builtin)
	assert.Equal(t, "Main Street Motors", body[1].Brand)
	assert.False(t, body[1].Builtin)
}

func TestServer_Template(t *testing.T) {
	t.Parallel()

	registry := dealrater.NewRegistryBuilder().
		AddBuiltins(dealrater.Template{Brand: "Toyota", Container: ".standard-inventory"}).
		Add(dealrater.Template{Brand: "Main Street Motors", Container: "article.car", Price: ".sticker"}).
		Build()

	t.Run("returns template by brand", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}, Registry: registry}

		rec := performRequest(s.Handler(), http.MethodGet, "/templates/Main%20Street%20Motors", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var got dealrater.Template
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "article.car", got.Container)
		assert.Equal(t, ".sticker", got.Price)
	})

	t.Run("returns 404 for unknown brand", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}, Registry: registry}

		rec := performRequest(s.Handler(), http.MethodGet, "/templates/Lada", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"template \"Lada\" not found"}`, rec.Body.String())
	})

	t.Run("returns 404 without registry", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}}

		rec := performRequest(s.Handler(), http.MethodGet, "/templates/Toyota", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_Reports(t *testing.T) {
	t.Parallel()

	t.Run("lists reports with filter", func(t *testing.T) {
		t.Parallel()

		var got dealrater.ReportFilter
		s := &dealgin.Server{
			Rater: &mock.Rater{},
			Reports: &mock.ReportService{
				FindReportsFn: func(_ context.Context, f dealrater.ReportFilter) ([]*dealrater.Report, error) {
					got = f
					return []*dealrater.Report{{ID: "r1", URL: "https://toyota.example.com", CreatedAt: time.Now()}}, nil
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodGet, "/reports?brand=Toyota&limit=5&offset=10", "")

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got.Brand)
		assert.Equal(t, "Toyota", *got.Brand)
		assert.Equal(t, 5, got.Limit)
		assert.Equal(t, 10, got.Offset)
		assert.Contains(t, rec.Body.String(), `"id":"r1"`)
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}, Reports: &mock.ReportService{}}

		rec := performRequest(s.Handler(), http.MethodGet, "/reports?limit=lots", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns empty list without storage", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}}

		rec := performRequest(s.Handler(), http.MethodGet, "/reports", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("returns 404 for unknown report", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{},
			Reports: &mock.ReportService{
				FindReportByIDFn: func(_ context.Context, _ string) (*dealrater.Report, error) {
					return nil, dealrater.Errorf(dealrater.ENOTFOUND, "report not found")
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodGet, "/reports/missing", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"report not found"}`, rec.Body.String())
	})

	t.Run("deletes report", func(t *testing.T) {
		t.Parallel()

		var deleted string
		s := &dealgin.Server{
			Rater: &mock.Rater{},
			Reports: &mock.ReportService{
				DeleteReportFn: func(_ context.Context, id string) error {
					deleted = id
					return nil
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodDelete, "/reports/r1", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "r1", deleted)
	})

	t.Run("hides internal errors", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{},
			Reports: &mock.ReportService{
				FindReportByIDFn: func(_ context.Context, _ string) (*dealrater.Report, error) {
					return nil, errors.New("sql: database is closed")
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodGet, "/reports/r1", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal error"}`, rec.Body.String())
	})
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	t.Run("without cache", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{Rater: &mock.Rater{}}

		rec := performRequest(s.Handler(), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("includes cache stats", func(t *testing.T) {
		t.Parallel()

		s := &dealgin.Server{
			Rater: &mock.Rater{},
			Cache: &mock.ReportCache{
				StatsFn: func() dealrater.CacheStats {
					return dealrater.CacheStats{Hits: 3, Misses: 1, HitRate: 0.75, Items: 2}
				},
			},
		}

		rec := performRequest(s.Handler(), http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","cache":{"hits":3,"misses":1,"hitRate":0.75,"items":2}}`, rec.Body.String())
	})
}

func TestServer_OpenClose(t *testing.T) {
	t.Parallel()

	s := &dealgin.Server{Rater: &mock.Rater{}}
	require.NoError(t, s.Open("127.0.0.1:0"))

	resp, err := http.Get("http://" + s.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}
