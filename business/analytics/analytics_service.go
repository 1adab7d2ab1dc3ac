package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"profileHub/domain"
)

// EventRepository is the read-only event store surface the analytics use.
type EventRepository interface {
	FindRecent(ctx context.Context, userID uint, since time.Time) ([]domain.UserEvent, error)
	FindByUserAndType(ctx context.Context, userID uint, eventType string) ([]domain.UserEvent, error)
}

type AnalyticsService struct {
	eventRepo EventRepository
}

func NewAnalyticsService(eventRepo EventRepository) *AnalyticsService {
	return &AnalyticsService{
		eventRepo: eventRepo,
	}
}

// ActivityScore rates how active a user was over the last 30 days: active
// days weigh 60%, raw event count 40%. Zero events scores 0.
func (s *AnalyticsService) ActivityScore(ctx context.Context, userID uint) (float64, error) {
	since := time.Now().AddDate(0, 0, -30)
	events, err := s.eventRepo.FindRecent(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("load recent events: %w", err)
	}
	if len(events) == 0 {
		return 0.0, nil
	}

	activeDays := make(map[string]struct{})
	for _, e := range events {
		activeDays[e.EventTime.Format("2006-01-02")] = struct{}{}
	}

	dayScore := math.Min(float64(len(activeDays))/30.0*60, 60)
	eventScore := math.Min(float64(len(events))/100.0*40, 40)

	return round2(dayScore + eventScore), nil
}

// InterestWeights counts category occurrences on view and search events over
// the last 30 days and normalizes by the max count into 0..1. Categories the
// user never touched are absent, not zero.
func (s *AnalyticsService) InterestWeights(ctx context.Context, userID uint) (map[string]float64, error) {
	since := time.Now().AddDate(0, 0, -30)
	events, err := s.eventRepo.FindRecent(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("load recent events: %w", err)
	}

	counts := make(map[string]int)
	for _, e := range events {
		switch e.EventType {
		case domain.EventProductView, domain.EventCategoryView, domain.EventSearch:
			if category := e.DataString("category"); category != "" {
				counts[category]++
			}
		}
	}

	maxCount := 1
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	interests := make(map[string]float64, len(counts))
	for category, c := range counts {
		interests[category] = float64(c) / float64(maxCount)
	}

	return interests, nil
}

// ConversionRate is pay events per product view over 90 days, as a percent.
func (s *AnalyticsService) ConversionRate(ctx context.Context, userID uint) (float64, error) {
	since := time.Now().AddDate(0, 0, -90)
	events, err := s.eventRepo.FindRecent(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("load recent events: %w", err)
	}

	var views, payments int64
	for _, e := range events {
		switch e.EventType {
		case domain.EventProductView:
			views++
		case domain.EventPay:
			payments++
		}
	}

	if views == 0 {
		return 0.0, nil
	}

	return round2(float64(payments) * 100.0 / float64(views)), nil
}

// PurchaseCycle is the mean gap in days between consecutive purchases.
// Returns nil with fewer than two purchases.
func (s *AnalyticsService) PurchaseCycle(ctx context.Context, userID uint) (*float64, error) {
	purchases, err := s.eventRepo.FindByUserAndType(ctx, userID, domain.EventPay)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}
	if len(purchases) < 2 {
		return nil, nil
	}

	times := make([]time.Time, 0, len(purchases))
	for _, p := range purchases {
		times = append(times, p.EventTime)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	var totalDays int64
	for i := 1; i < len(times); i++ {
		totalDays += daysBetween(times[i-1], times[i])
	}

	cycle := float64(totalDays) / float64(len(times)-1)
	return &cycle, nil
}

// RFM scores Recency, Frequency and Monetary each 1..5 and maps the sum to a
// customer tier. A user without purchases gets the "no purchase history" tier
// with all sub-scores at 0.
func (s *AnalyticsService) RFM(ctx context.Context, userID uint) (domain.RFMResult, error) {
	purchases, err := s.eventRepo.FindByUserAndType(ctx, userID, domain.EventPay)
	if err != nil {
		return domain.RFMResult{}, fmt.Errorf("load purchases: %w", err)
	}
	if len(purchases) == 0 {
		return domain.RFMResult{Tier: "no purchase history"}, nil
	}

	lastPurchase := purchases[0].EventTime
	var totalAmount float64
	for _, p := range purchases {
		if p.EventTime.After(lastPurchase) {
			lastPurchase = p.EventTime
		}
		totalAmount += p.DataFloat("amount")
	}

	recencyDays := int(daysBetween(lastPurchase, time.Now()))
	rScore := scoreByBreakpoints(float64(recencyDays), []breakpoint{
		{30, 5}, {60, 4}, {90, 3}, {180, 2},
	}, 1, true)

	frequency := len(purchases)
	fScore := scoreByBreakpoints(float64(frequency), []breakpoint{
		{10, 5}, {5, 4}, {3, 3}, {2, 2},
	}, 1, false)

	mScore := scoreByBreakpoints(totalAmount, []breakpoint{
		{10000, 5}, {5000, 4}, {2000, 3}, {500, 2},
	}, 1, false)

	total := rScore + fScore + mScore

	var tier string
	switch {
	case total >= 13:
		tier = "top value"
	case total >= 10:
		tier = "developing"
	case total >= 7:
		tier = "retained"
	case total >= 4:
		tier = "general"
	default:
		tier = "low value"
	}

	return domain.RFMResult{
		RScore:      rScore,
		FScore:      fScore,
		MScore:      mScore,
		Score:       total,
		Tier:        tier,
		RecencyDays: recencyDays,
		Frequency:   frequency,
		TotalAmount: totalAmount,
	}, nil
}

// ChurnRisk adds up inactivity, purchase-gap and low-activity signals into a
// heuristic risk score. A user with no events at all is flat-out "high" risk.
func (s *AnalyticsService) ChurnRisk(ctx context.Context, userID uint) (domain.ChurnRisk, error) {
	events, err := s.eventRepo.FindRecent(ctx, userID, time.Time{})
	if err != nil {
		return domain.ChurnRisk{}, fmt.Errorf("load events: %w", err)
	}
	if len(events) == 0 {
		return domain.ChurnRisk{
			Risk:    "high",
			Score:   100,
			Reasons: []string{"no activity record"},
		}, nil
	}

	lastActive := events[0].EventTime
	for _, e := range events {
		if e.EventTime.After(lastActive) {
			lastActive = e.EventTime
		}
	}
	daysSinceActive := int(daysBetween(lastActive, time.Now()))

	riskScore := 0
	var reasons []string

	if daysSinceActive > 60 {
		riskScore += 40
		reasons = append(reasons, "inactive for over 60 days")
	} else if daysSinceActive > 30 {
		riskScore += 20
		reasons = append(reasons, "inactive for over 30 days")
	}

	purchases, err := s.eventRepo.FindByUserAndType(ctx, userID, domain.EventPay)
	if err != nil {
		return domain.ChurnRisk{}, fmt.Errorf("load purchases: %w", err)
	}

	if len(purchases) > 0 {
		lastPurchase := purchases[0].EventTime
		for _, p := range purchases {
			if p.EventTime.After(lastPurchase) {
				lastPurchase = p.EventTime
			}
		}
		daysSincePurchase := daysBetween(lastPurchase, time.Now())

		if daysSincePurchase > 90 {
			riskScore += 30
			reasons = append(reasons, "no purchase in over 90 days")
		} else if daysSincePurchase > 60 {
			riskScore += 15
			reasons = append(reasons, "no purchase in over 60 days")
		}
	} else {
		riskScore += 20
		reasons = append(reasons, "never purchased")
	}

	activityScore, err := s.ActivityScore(ctx, userID)
	if err != nil {
		return domain.ChurnRisk{}, err
	}
	if activityScore < 20 {
		riskScore += 30
		reasons = append(reasons, "very low activity")
	} else if activityScore < 40 {
		riskScore += 15
		reasons = append(reasons, "declining activity")
	}

	var risk string
	switch {
	case riskScore >= 70:
		risk = "high"
	case riskScore >= 40:
		risk = "medium"
	default:
		risk = "low"
	}

	return domain.ChurnRisk{
		Risk:            risk,
		Score:           riskScore,
		Reasons:         reasons,
		DaysSinceActive: daysSinceActive,
		ActivityScore:   activityScore,
	}, nil
}

// PurchaseFunnel counts the view -> cart -> order -> pay path over 30 days.
func (s *AnalyticsService) PurchaseFunnel(ctx context.Context, userID uint) (domain.PurchaseFunnel, error) {
	since := time.Now().AddDate(0, 0, -30)
	events, err := s.eventRepo.FindRecent(ctx, userID, since)
	if err != nil {
		return domain.PurchaseFunnel{}, fmt.Errorf("load recent events: %w", err)
	}

	funnel := domain.PurchaseFunnel{}
	for _, e := range events {
		switch e.EventType {
		case domain.EventProductView:
			funnel.Views++
		case domain.EventAddToCart:
			funnel.AddToCarts++
		case domain.EventPlaceOrder:
			funnel.Orders++
		case domain.EventPay:
			funnel.Payments++
		}
	}

	if funnel.Views > 0 {
		funnel.ViewToCartRate = round2(float64(funnel.AddToCarts) * 100.0 / float64(funnel.Views))
	}
	if funnel.AddToCarts > 0 {
		funnel.CartToOrderRate = round2(float64(funnel.Orders) * 100.0 / float64(funnel.AddToCarts))
	}
	if funnel.Orders > 0 {
		funnel.OrderToPayRate = round2(float64(funnel.Payments) * 100.0 / float64(funnel.Orders))
	}

	return funnel, nil
}

// ---- helpers ----

type breakpoint struct {
	at    float64
	score int
}

// scoreByBreakpoints walks an ordered breakpoint table. With lessOrEqual the
// first breakpoint the value is <= wins (recency); otherwise the first the
// value is >= wins (frequency, monetary). Falls back to floor.
func scoreByBreakpoints(value float64, table []breakpoint, floor int, lessOrEqual bool) int {
	for _, bp := range table {
		if lessOrEqual && value <= bp.at {
			return bp.score
		}
		if !lessOrEqual && value >= bp.at {
			return bp.score
		}
	}
	return floor
}

func daysBetween(from, to time.Time) int64 {
	return int64(to.Sub(from).Hours() / 24)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
