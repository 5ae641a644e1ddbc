// Package goquery implements listing extraction over dealer inventory pages
// using CSS selectors.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/dealrater"
	"golang.org/x/net/html"
)

var _ dealrater.Extractor = (*Extractor)(nil)

// compiledTemplate is a Template with its selectors parsed once.
// A nil container marks a template whose container selector does not parse;
// such a template never matches.
type compiledTemplate struct {
	brand     string
	container goquery.Matcher
	title     goquery.Matcher
	price     goquery.Matcher
	image     goquery.Matcher
	link      goquery.Matcher
}

func compileTemplates(templates []dealrater.Template) []compiledTemplate {
	compiled := make([]compiledTemplate, 0, len(templates))
	for _, t := range templates {
		ct := compiledTemplate{
			brand: t.Brand,
			title: compileOrNone(t.Title),
			price: compileOrNone(t.Price),
			image: compileOrNone(t.Image),
			link:  compileOrNone(t.Link),
		}
		if m, ok := compile(t.Container); ok {
			ct.container = m
		}
		compiled = append(compiled, ct)
	}
	return compiled
}

func compile(selector string) (goquery.Matcher, bool) {
	if strings.TrimSpace(selector) == "" {
		return nil, false
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, false
	}
	return m, true
}

func compileOrNone(selector string) goquery.Matcher {
	if m, ok := compile(selector); ok {
		return m
	}
	return matchNone{}
}

// matchNone matches no node. It stands in for field selectors that do not
// parse so the field falls back to its default.
type matchNone struct{}

func (matchNone) Match(*html.Node) bool                  { return false }
func (matchNone) MatchAll(*html.Node) []*html.Node       { return nil }
func (matchNone) Filter(nodes []*html.Node) []*html.Node { return nil }

// parseDocument parses html into a goquery document.
// Returns nil if the input cannot be parsed.
func parseDocument(s string) *goquery.Document {
	root, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}
	return goquery.NewDocumentFromNode(root)
}

// selectTemplate returns the first template whose container selector
// matches at least one element, together with the matched containers.
func selectTemplate(doc *goquery.Document, templates []compiledTemplate) (*compiledTemplate, *goquery.Selection) {
	for i := range templates {
		t := &templates[i]
		if t.container == nil {
			continue
		}
		if containers := doc.FindMatcher(t.container); containers.Length() > 0 {
			return t, containers
		}
	}
	return nil, nil
}

// Extractor extracts listings using an ordered set of templates.
// Selection is first-match-wins: the first template in registry order whose
// container selector matches anything is used for the whole document, even if
// a later template would match better.
//
// Extractor holds no mutable state and is safe for concurrent use.
type Extractor struct {
	templates []compiledTemplate
}

// NewExtractor creates an Extractor over the templates of registry.
func NewExtractor(registry *dealrater.Registry) *Extractor {
	return &Extractor{templates: compileTemplates(registry.Templates())}
}

// Extract parses html and returns the listings of the first matching template.
func (e *Extractor) Extract(html string) *dealrater.Extraction {
	doc := parseDocument(html)
	if doc == nil {
		return &dealrater.Extraction{}
	}

	t, containers := selectTemplate(doc, e.templates)
	if t == nil {
		return &dealrater.Extraction{}
	}

	listings := make([]dealrater.Listing, 0, containers.Length())
	containers.Each(func(_ int, container *goquery.Selection) {
		listings = append(listings, extractListing(container, t))
	})

	return &dealrater.Extraction{Brand: t.brand, Listings: listings}
}

// Detector identifies which template matches a page without extracting listings.
type Detector struct {
	templates []compiledTemplate
}

// NewDetector creates a Detector over the templates of registry.
func NewDetector(registry *dealrater.Registry) *Detector {
	return &Detector{templates: compileTemplates(registry.Templates())}
}

// Detect returns the brand of the template that would be used for html,
// or "" when no template matches.
func (d *Detector) Detect(html string) string {
	doc := parseDocument(html)
	if doc == nil {
		return ""
	}
	if t, _ := selectTemplate(doc, d.templates); t != nil {
		return t.brand
	}
	return ""
}
