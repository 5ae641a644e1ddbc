// Package gin serves the dealer page rating API over HTTP.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/dealrater"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// DefaultAddr matches the port the rater has always listened on.
const DefaultAddr = ":3001"

// maxBodySize caps request bodies.
const maxBodySize = 10 << 20

// Server is the HTTP API. Rater is required; Reports and Cache are used
// when set.
type Server struct {
	Rater    dealrater.Rater
	Reports  dealrater.ReportService
	Cache    dealrater.ReportCache
	Registry *dealrater.Registry
	Logger   *slog.Logger

	// ScrapeLimit is the number of /scrape requests allowed per client per
	// second. Zero disables the limit.
	ScrapeLimit float64

	// StaticDir, when set, is served for paths that match no route.
	StaticDir string

	server *http.Server
	ln     net.Listener
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), limitBody(maxBodySize))

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	r.Use(cors.New(config))

	scrape := []gin.HandlerFunc{s.handleScrape}
	if s.ScrapeLimit > 0 {
		scrape = append([]gin.HandlerFunc{rateLimit(newClientLimiter(s.ScrapeLimit, 1))}, scrape...)
	}
	r.POST("/scrape", scrape...)

	r.GET("/templates", s.handleTemplates)
	r.GET("/templates/:brand", s.handleTemplate)
	r.GET("/reports", s.handleReports)
	r.GET("/reports/:id", s.handleReport)
	r.DELETE("/reports/:id", s.handleDeleteReport)
	r.GET("/health", s.handleHealth)

	if s.StaticDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.StaticDir))))
	}

	return r
}

// Open starts serving on addr in the background.
func (s *Server) Open(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("serve", "err", err)
		}
	}()
	return nil
}

// Addr returns the listening address, or nil before Open.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close gracefully shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Listings []dealrater.ScoredListing `json:"listings"`
}

func (s *Server) handleScrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.String(http.StatusBadRequest, "Missing URL.")
		return
	}

	if s.Cache != nil {
		if report, ok := s.Cache.Get(req.URL); ok {
			c.JSON(http.StatusOK, scrapeResponse{Listings: report.Listings})
			return
		}
	}

	report, err := s.Rater.Rate(c.Request.Context(), req.URL)
	if err != nil {
		s.logger().Error("scrape failed", "url", req.URL, "err", err)
		c.String(http.StatusInternalServerError, "Scraping failed.")
		return
	}

	if s.Reports != nil {
		if err := s.Reports.CreateReport(c.Request.Context(), report); err != nil {
			s.logger().Warn("save report", "url", req.URL, "err", err)
		}
	}
	if s.Cache != nil {
		s.Cache.Set(req.URL, report)
	}

	c.JSON(http.StatusOK, scrapeResponse{Listings: report.Listings})
}

type templateResponse struct {
	dealrater.Template
	Builtin bool `json:"builtin"`
}

func (s *Server) handleTemplates(c *gin.Context) {
	out := []templateResponse{}
	if s.Registry != nil {
		for i, t := range s.Registry.Templates() {
			out = append(out, templateResponse{Template: t, Builtin: s.Registry.Builtin(i)})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleTemplate(c *gin.Context) {
	if s.Registry == nil {
		s.writeError(c, dealrater.Errorf(dealrater.ENOTFOUND, "template %q not found", c.Param("brand")))
		return
	}
	t, err := s.Registry.Find(c.Param("brand"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if s.Cache != nil {
		body["cache"] = s.Cache.Stats()
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleReports(c *gin.Context) {
	if s.Reports == nil {
		c.JSON(http.StatusOK, []*dealrater.Report{})
		return
	}

	filter := dealrater.ReportFilter{Limit: 20}
	if brand := c.Query("brand"); brand != "" {
		filter.Brand = &brand
	}
	if url := c.Query("url"); url != "" {
		filter.URL = &url
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(c, dealrater.Errorf(dealrater.EINVALID, "invalid limit %q", v))
			return
		}
		filter.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(c, dealrater.Errorf(dealrater.EINVALID, "invalid offset %q", v))
			return
		}
		filter.Offset = n
	}

	reports, err := s.Reports.FindReports(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if reports == nil {
		reports = []*dealrater.Report{}
	}
	c.JSON(http.StatusOK, reports)
}

func (s *Server) handleReport(c *gin.Context) {
	if s.Reports == nil {
		s.writeError(c, dealrater.Errorf(dealrater.ENOTFOUND, "report not found"))
		return
	}
	report, err := s.Reports.FindReportByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleDeleteReport(c *gin.Context) {
	if s.Reports == nil {
		s.writeError(c, dealrater.Errorf(dealrater.ENOTFOUND, "report not found"))
		return
	}
	if err := s.Reports.DeleteReport(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps application error codes to HTTP statuses. Internal
// errors are logged and reported without detail.
func (s *Server) writeError(c *gin.Context, err error) {
	code := dealrater.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case dealrater.EINVALID:
		status = http.StatusBadRequest
	case dealrater.ENOTFOUND:
		status = http.StatusNotFound
	default:
		s.logger().Error("request failed", "path", c.Request.URL.Path, "err", err)
	}
	c.JSON(status, gin.H{"error": dealrater.ErrorMessage(err)})
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
