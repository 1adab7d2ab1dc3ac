package profile

import (
	"math"
	"strings"

	"profileHub/domain"
)

// ScoringEngine turns a profile's sub-objects into the composite 0-100 score,
// a user-type label, tags and a marketing strategy. Pure computation, no I/O.
type ScoringEngine struct{}

func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// ProfileScore is the weighted sum of the three component scores: digital
// behavior 30%, value assessment 40%, stickiness 30%. A missing sub-object
// contributes zero instead of failing.
func (e *ScoringEngine) ProfileScore(p *domain.UserProfile) float64 {
	score := 0.0

	if p.DigitalBehavior != nil {
		score += e.digitalBehaviorScore(p.DigitalBehavior) * 0.3
	}
	if p.ValueAssessment != nil {
		score += e.valueScore(p.ValueAssessment) * 0.4
	}
	if p.Stickiness != nil {
		score += e.stickinessScore(p.Stickiness) * 0.3
	}

	return round2(score)
}

func (e *ScoringEngine) digitalBehaviorScore(b *domain.DigitalBehavior) float64 {
	score := 0.0

	// category diversity, up to 40
	score += math.Min(float64(len(b.ProductCategories))*8, 40)

	// brand preference count, up to 30
	score += math.Min(float64(len(b.BrandPreferences))*10, 30)

	// info habit and purchase preference present, 15 each
	if b.InfoHabit != "" {
		score += 15
	}
	if b.PurchasePreference != "" {
		score += 15
	}

	return math.Min(score, 100)
}

func (e *ScoringEngine) valueScore(v *domain.ValueAssessment) float64 {
	score := 50.0

	if len(v.PreferenceWeights) > 0 {
		sum := 0.0
		for _, w := range v.PreferenceWeights {
			sum += w
		}
		score += sum / float64(len(v.PreferenceWeights)) * 30
	}

	switch strings.ToLower(v.ProfileQuality) {
	case "high":
		score += 20
	case "medium":
		score += 10
	}

	return math.Min(score, 100)
}

func (e *ScoringEngine) stickinessScore(st *domain.Stickiness) float64 {
	score := st.LoyaltyScore
	score += float64(len(st.Concerns)) * 5

	return math.Min(score, 100)
}

// UserType maps the composite score onto the five user-type labels.
func (e *ScoringEngine) UserType(score float64) string {
	switch {
	case score >= 80:
		return "high value"
	case score >= 60:
		return "active"
	case score >= 40:
		return "potential"
	case score >= 20:
		return "general"
	default:
		return "new"
	}
}

// GenerateTags fires every matching tag rule and returns the deduplicated set.
func (e *ScoringEngine) GenerateTags(p *domain.UserProfile) []string {
	set := make(map[string]struct{})

	if p.ProfileScore >= 80 {
		set["VIP"] = struct{}{}
	}
	if p.ProfileScore >= 60 {
		set["quality"] = struct{}{}
	}

	if b := p.DigitalBehavior; b != nil {
		if len(b.ProductCategories) >= 5 {
			set["multi-category"] = struct{}{}
		}
		if len(b.BrandPreferences) >= 3 {
			set["brand-loyal"] = struct{}{}
		}
		if strings.Contains(b.PurchasePreference, "price") {
			set["price-sensitive"] = struct{}{}
		}
		if strings.Contains(b.PurchasePreference, "quality") {
			set["quality-oriented"] = struct{}{}
		}
	}

	if st := p.Stickiness; st != nil && st.LoyaltyScore >= 70 {
		set["high-loyalty"] = struct{}{}
	}

	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	return tags
}

// strategyTable maps user type to the marketing playbook. Types not in the
// table get the low-touch default.
var strategyTable = map[string]domain.MarketingStrategy{
	"high value": {
		Approach:       "exclusive offers and VIP service",
		ContactCadence: "1-2 times per week",
		ContentType:    "premium picks, early access to new arrivals",
	},
	"active": {
		Approach:       "regular promotions and loyalty rewards",
		ContactCadence: "2-3 times per week",
		ContentType:    "best sellers, bundle deals",
	},
	"potential": {
		Approach:       "nurture campaigns and trial activities",
		ContactCadence: "once per week",
		ContentType:    "product education, usage tips",
	},
}

var defaultStrategy = domain.MarketingStrategy{
	Approach:       "light-touch outreach and interest building",
	ContactCadence: "once every two weeks",
	ContentType:    "brand stories, starter products",
}

// RecommendStrategy picks the marketing strategy for the profile's user type.
func (e *ScoringEngine) RecommendStrategy(p *domain.UserProfile) domain.MarketingStrategy {
	userType := e.UserType(p.ProfileScore)

	strategy, ok := strategyTable[userType]
	if !ok {
		strategy = defaultStrategy
	}
	strategy.UserType = userType

	return strategy
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
