package dealrater

import "strings"

// BaseScore is the score of a listing before any adjustment.
const BaseScore = 50

// LowMileage is the mileage below which a listing earns the mileage bonus.
const LowMileage = 60000

// RecentYear is the model year after which a listing earns the year bonus.
const RecentYear = 2018

var bonusFeatures = []string{
	"Leather",
	"Navigation",
	"4WD",
	"AWD",
	"Sunroof",
	"Bluetooth",
	"Backup Camera",
	"Heated Seats",
	"Keyless Entry",
	"Blind Spot Monitor",
}

// BonusFeatures returns the feature keywords that each add to a listing's score.
func BonusFeatures() []string {
	out := make([]string, len(bonusFeatures))
	copy(out, bonusFeatures)
	return out
}

// Score rates a listing from 0 to 100 against the market average price.
// The price adjustment applies only when both the listing price and the
// market average are non-zero.
func Score(l *Listing, marketAverage float64) int {
	score := BaseScore

	if l.NumPrice != 0 && marketAverage != 0 {
		switch {
		case l.NumPrice < marketAverage*0.8:
			score += 25
		case l.NumPrice < marketAverage*0.9:
			score += 20
		case l.NumPrice < marketAverage:
			score += 10
		}
	}

	score += featureBonus(l.Features)

	if l.Mileage != nil && *l.Mileage != 0 && *l.Mileage < LowMileage {
		score += 5
	}
	if l.Year != nil && *l.Year > RecentYear {
		score += 5
	}
	if l.Warranty != "" {
		score += 5
	}
	if strings.Contains(strings.ToLower(l.Description), "import fee") {
		score -= 10
	}

	return max(0, min(100, score))
}

// featureBonus adds 2 for every bonus keyword found in any feature.
// Each keyword counts once no matter how many features mention it.
func featureBonus(features []string) int {
	if len(features) == 0 {
		return 0
	}

	lowered := make([]string, len(features))
	for i, f := range features {
		lowered[i] = strings.ToLower(f)
	}

	bonus := 0
	for _, keyword := range bonusFeatures {
		keyword = strings.ToLower(keyword)
		for _, f := range lowered {
			if strings.Contains(f, keyword) {
				bonus += 2
				break
			}
		}
	}
	return bonus
}

// MarketAverage returns the mean numeric price of the listings.
// Listings with an unknown (zero) price still count toward the divisor.
// An empty slice averages to 0.
func MarketAverage(listings []Listing) float64 {
	var sum float64
	for _, l := range listings {
		sum += l.NumPrice
	}
	return sum / float64(max(len(listings), 1))
}

// RateListings scores every listing against the market average of the
// slice. Order is preserved.
func RateListings(listings []Listing) (float64, []ScoredListing) {
	avg := MarketAverage(listings)
	scored := make([]ScoredListing, len(listings))
	for i := range listings {
		scored[i] = ScoredListing{
			Listing: listings[i],
			Score:   Score(&listings[i], avg),
		}
	}
	return avg, scored
}
