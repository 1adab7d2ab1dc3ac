package domain

// RFMResult is the Recency-Frequency-Monetary breakdown for one user.
type RFMResult struct {
	RScore      int     `json:"r_score"`
	FScore      int     `json:"f_score"`
	MScore      int     `json:"m_score"`
	Score       int     `json:"score"`
	Tier        string  `json:"tier"`
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	TotalAmount float64 `json:"total_amount"`
}

type ChurnRisk struct {
	Risk            string   `json:"risk"`
	Score           int      `json:"score"`
	Reasons         []string `json:"reasons"`
	DaysSinceActive int      `json:"days_since_active"`
	ActivityScore   float64  `json:"activity_score"`
}

// PurchaseFunnel counts the view -> cart -> order -> pay path over a window.
// Rates are percentages, 0 when the denominator is 0.
type PurchaseFunnel struct {
	Views           int64   `json:"views"`
	AddToCarts      int64   `json:"add_to_carts"`
	Orders          int64   `json:"orders"`
	Payments        int64   `json:"payments"`
	ViewToCartRate  float64 `json:"view_to_cart_rate"`
	CartToOrderRate float64 `json:"cart_to_order_rate"`
	OrderToPayRate  float64 `json:"order_to_pay_rate"`
}

// RecommendationResult is one ranked item from a recommendation strategy.
// Results are per request and never persisted.
type RecommendationResult struct {
	ItemID   string  `json:"item_id"`
	Score    float64 `json:"score"`
	Strategy string  `json:"strategy"`
	Reason   string  `json:"reason"`
}
