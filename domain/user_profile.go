package domain

import "time"

// DigitalBehavior captures browsing and buying habits derived from events
// and questionnaire answers.
type DigitalBehavior struct {
	ProductCategories  []string `json:"product_categories"`
	InfoHabit          string   `json:"info_habit"`
	PurchasePreference string   `json:"purchase_preference"`
	BrandPreferences   []string `json:"brand_preferences"`
}

type CoreNeeds struct {
	TopConcerns []string `json:"top_concerns"`
	PainPoint   string   `json:"pain_point"`
}

type ValueAssessment struct {
	ProfileQuality    string             `json:"profile_quality"`
	ConsumptionLevel  string             `json:"consumption_level"`
	PreferenceWeights map[string]float64 `json:"preference_weights"`
	AvgOrderValue     float64            `json:"avg_order_value"`
}

type Stickiness struct {
	Concerns     []string `json:"concerns"`
	PainPoint    string   `json:"pain_point"`
	LoyaltyScore float64  `json:"loyalty_score"`
}

// UserProfile is the one-per-user composite profile. ProfileScore is always
// recomputed by the scoring engine; callers never set it directly.
type UserProfile struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"column:user_id;uniqueIndex;not null" json:"user_id"`
	Username        string           `gorm:"column:username;index" json:"username"`
	DigitalBehavior *DigitalBehavior `gorm:"column:digital_behavior;type:jsonb;serializer:json" json:"digital_behavior,omitempty"`
	CoreNeeds       *CoreNeeds       `gorm:"column:core_needs;type:jsonb;serializer:json" json:"core_needs,omitempty"`
	ValueAssessment *ValueAssessment `gorm:"column:value_assessment;type:jsonb;serializer:json" json:"value_assessment,omitempty"`
	Stickiness      *Stickiness      `gorm:"column:stickiness;type:jsonb;serializer:json" json:"stickiness,omitempty"`
	ProfileScore    float64          `gorm:"column:profile_score;index" json:"profile_score"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// MarketingStrategy is the rule-table output for a user type.
type MarketingStrategy struct {
	UserType       string `json:"user_type"`
	Approach       string `json:"approach"`
	ContactCadence string `json:"contact_cadence"`
	ContentType    string `json:"content_type"`
}
