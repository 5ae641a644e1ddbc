package crawl

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// ComputeHash returns the hex xxhash of content. Reports carry it so
// unchanged pages can be recognized between runs.
func ComputeHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// TruncateURL shortens a URL for display, keeping the end which is more informative.
func TruncateURL(url string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 4 {
		return url[:min(len(url), maxLen)]
	}
	if len(url) <= maxLen {
		return url
	}
	return "..." + url[len(url)-maxLen+3:]
}

// FormatPrice formats a parsed price as whole dollars with thousands
// separators. Zero is shown as "n/a" since it means the price is unknown.
func FormatPrice(price float64) string {
	if price == 0 {
		return "n/a"
	}
	return "$" + groupThousands(int64(price+0.5))
}

// FormatMileage formats an odometer reading, or "n/a" when unknown.
func FormatMileage(mileage *int) string {
	if mileage == nil {
		return "n/a"
	}
	return groupThousands(int64(*mileage)) + " mi"
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}
