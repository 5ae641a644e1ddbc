package goquery

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/dealrater"
)

// mileageSelectors are the elements known to hold mileage on marketplace
// layouts (CarMax, Edmunds and common dealer platforms).
var mileageSelectors = cascadia.MustCompile(
	".scct--price-miles-info--miles, .key-point-icon + .text-cool-gray-30, .inventory-card-mileage, .optMileage",
)

// featureSelectors match list and feature items inside a container.
var featureSelectors = cascadia.MustCompile(
	"li, .feature-item, .features-list, .key-features, .list-unstyled li",
)

var (
	nonPriceRe    = regexp.MustCompile(`[^\d.]`)
	floatPrefixRe = regexp.MustCompile(`^\d*\.?\d*`)
	yearRe        = regexp.MustCompile(`\b(20[0-2][0-9]|19[8-9][0-9])\b`)

	// mileageRe accepts a bare number since the known selectors
	// already point at a mileage element.
	mileageRe = regexp.MustCompile(`(?i)([\d,]+)\s*(mi|miles)?`)

	// mileageFallbackRe requires a unit because it runs over arbitrary text.
	mileageFallbackRe = regexp.MustCompile(`(?i)([\d,]+)\s*(miles|mi)`)
)

// Feature text must have at least minFeatureLen and fewer than maxFeatureLen runes.
const (
	minFeatureLen = 2
	maxFeatureLen = 100
)

// ParsePrice converts display price text to a number. Every character other
// than digits and dots is dropped and the longest leading decimal number is
// parsed. Returns 0 when no number can be read.
func ParsePrice(text string) float64 {
	digits := floatPrefixRe.FindString(nonPriceRe.ReplaceAllString(text, ""))
	price, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0
	}
	return price
}

// ParseYear returns the first model year between 1980 and 2029 found in
// text, or nil.
func ParseYear(text string) *int {
	m := yearRe.FindString(text)
	if m == "" {
		return nil
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &year
}

// ParseMileage reads the first number in text taken from a known mileage
// element, e.g. "32,000 mi". Returns nil when there is no number or it is zero.
func ParseMileage(text string) *int {
	return parseMileage(mileageRe, text)
}

func parseMileage(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	return mileageNumber(m[1])
}

// mileageNumber converts a matched digit group with thousands separators.
// Zero counts as unknown.
func mileageNumber(group string) *int {
	n, err := strconv.Atoi(strings.ReplaceAll(group, ",", ""))
	if err != nil || n == 0 {
		return nil
	}
	return &n
}

// extractText returns the trimmed text of the first element matched by m
// inside container, or def when there is none or it is blank.
func extractText(container *goquery.Selection, m goquery.Matcher, def string) string {
	text := strings.TrimSpace(container.FindMatcher(m).First().Text())
	if text == "" {
		return def
	}
	return text
}

// extractAttr returns attribute attr of the first element matched by m
// inside container, or "".
func extractAttr(container *goquery.Selection, m goquery.Matcher, attr string) string {
	return container.FindMatcher(m).First().AttrOr(attr, "")
}

// extractMileage tries the known mileage elements first, then scans every
// descendant depth-first and stops at the first text mentioning miles.
func extractMileage(container *goquery.Selection) *int {
	text := strings.TrimSpace(container.FindMatcher(mileageSelectors).First().Text())
	if mileage := ParseMileage(text); mileage != nil {
		return mileage
	}

	var mileage *int
	container.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		m := mileageFallbackRe.FindStringSubmatch(s.Text())
		if m == nil {
			return true
		}
		mileage = mileageNumber(m[1])
		return false
	})
	return mileage
}

// extractFeatures collects the text of feature items in document order.
// Returns nil when no item qualifies.
func extractFeatures(container *goquery.Selection) []string {
	var features []string
	container.FindMatcher(featureSelectors).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		n := utf8.RuneCountInString(text)
		if n >= minFeatureLen && n < maxFeatureLen {
			features = append(features, text)
		}
	})
	return features
}

// extractListing builds a Listing from one container using the template's
// compiled selectors.
func extractListing(container *goquery.Selection, t *compiledTemplate) dealrater.Listing {
	title := extractText(container, t.title, dealrater.NoTitle)
	price := extractText(container, t.price, dealrater.NoPrice)

	return dealrater.Listing{
		Title:       title,
		Price:       price,
		Link:        extractAttr(container, t.link, "href"),
		Image:       extractAttr(container, t.image, "src"),
		NumPrice:    ParsePrice(price),
		Year:        ParseYear(title),
		Mileage:     extractMileage(container),
		Features:    extractFeatures(container),
		Warranty:    dealrater.PlaceholderWarranty,
		Description: dealrater.PlaceholderDescription,
	}
}
