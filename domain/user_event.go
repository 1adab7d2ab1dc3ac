package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Event types recorded by the tracking endpoints. The analytics pipeline only
// interprets a subset; everything else still contributes to activity scoring.
const (
	EventPageView     = "page_view"
	EventProductView  = "product_view"
	EventCategoryView = "category_view"
	EventSearch       = "search"
	EventClick        = "click"
	EventCollect      = "collect"
	EventShare        = "share"
	EventAddToCart    = "add_to_cart"
	EventPlaceOrder   = "place_order"
	EventPay          = "pay"
)

type UserEvent struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	EventType string            `gorm:"column:event_type;not null" json:"event_type"`
	EventData datatypes.JSONMap `gorm:"column:event_data;type:jsonb" json:"event_data"`
	EventTime time.Time         `gorm:"column:event_time;index" json:"event_time"`
	Source    string            `gorm:"column:source" json:"source"`
	Weight    float64           `gorm:"column:weight" json:"weight"`
	Processed bool              `gorm:"column:processed;index" json:"processed"`
}

func (UserEvent) TableName() string {
	return "user_events"
}

// DataString reads a string value from the event payload ("" when absent).
func (e UserEvent) DataString(key string) string {
	if e.EventData == nil {
		return ""
	}
	if s, ok := e.EventData[key].(string); ok {
		return s
	}
	return ""
}

// DataFloat reads a numeric value from the payload. JSONB numbers come back
// as float64; anything non-numeric counts as zero.
func (e UserEvent) DataFloat(key string) float64 {
	if e.EventData == nil {
		return 0
	}
	switch v := e.EventData[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
