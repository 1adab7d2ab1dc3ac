package domain

import "time"

const (
	SegmentStatic   = "STATIC"
	SegmentDynamic  = "DYNAMIC"
	SegmentRFM      = "RFM"
	SegmentBehavior = "BEHAVIOR"
	SegmentCustom   = "CUSTOM"
)

// Condition operators.
const (
	OpEquals         = "EQUALS"
	OpNotEquals      = "NOT_EQUALS"
	OpGreaterThan    = "GREATER_THAN"
	OpLessThan       = "LESS_THAN"
	OpGreaterOrEqual = "GREATER_OR_EQUAL"
	OpLessOrEqual    = "LESS_OR_EQUAL"
	OpContains       = "CONTAINS"
	OpNotContains    = "NOT_CONTAINS"
	OpIsNull         = "IS_NULL"
	OpIsNotNull      = "IS_NOT_NULL"
)

// SegmentCondition is one clause of a segment rule. Logic ("AND"/"OR",
// default "AND") tells how the NEXT clause combines with the running result.
type SegmentCondition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Logic    string `json:"logic,omitempty"`
}

type UserSegment struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"column:name;not null" json:"name"`
	Description string             `gorm:"column:description" json:"description"`
	Type        string             `gorm:"column:type;not null;index" json:"type"`
	Conditions  []SegmentCondition `gorm:"column:conditions;type:jsonb;serializer:json" json:"conditions,omitempty"`
	UserIDs     []uint             `gorm:"column:user_ids;type:jsonb;serializer:json" json:"user_ids"`
	UserCount   int                `gorm:"column:user_count" json:"user_count"`
	Active      bool               `gorm:"column:active;default:true;index" json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (UserSegment) TableName() string {
	return "user_segments"
}
