package segmentation

import (
	"fmt"
	"strings"

	"profileHub/domain"
)

// MatchesConditions folds the condition list left to right over a single
// running boolean. Each condition's Logic value ("AND"/"OR", default "AND")
// decides how the NEXT condition combines — there is no operator precedence,
// only sequential evaluation. An empty list matches everything.
func MatchesConditions(p *domain.UserProfile, conditions []domain.SegmentCondition) bool {
	if len(conditions) == 0 {
		return true
	}

	result := true
	logic := "AND"

	for _, c := range conditions {
		met := evaluateCondition(p, c)

		if logic == "OR" {
			result = result || met
		} else {
			result = result && met
		}

		if c.Logic != "" {
			logic = c.Logic
		} else {
			logic = "AND"
		}
	}

	return result
}

func evaluateCondition(p *domain.UserProfile, c domain.SegmentCondition) bool {
	fieldValue := profileField(p, c.Field)

	// unknown or absent field only matches IS_NULL
	if fieldValue == nil {
		return c.Operator == domain.OpIsNull
	}

	switch c.Operator {
	case domain.OpEquals:
		return valuesEqual(fieldValue, c.Value)
	case domain.OpNotEquals:
		return !valuesEqual(fieldValue, c.Value)
	case domain.OpGreaterThan:
		cmp, ok := compareNumeric(fieldValue, c.Value)
		return ok && cmp > 0
	case domain.OpLessThan:
		cmp, ok := compareNumeric(fieldValue, c.Value)
		return ok && cmp < 0
	case domain.OpGreaterOrEqual:
		cmp, ok := compareNumeric(fieldValue, c.Value)
		return ok && cmp >= 0
	case domain.OpLessOrEqual:
		cmp, ok := compareNumeric(fieldValue, c.Value)
		return ok && cmp <= 0
	case domain.OpContains:
		return strings.Contains(toString(fieldValue), toString(c.Value))
	case domain.OpNotContains:
		return !strings.Contains(toString(fieldValue), toString(c.Value))
	case domain.OpIsNotNull:
		return true
	default:
		return false
	}
}

// profileField resolves a condition field name to its current value, nil for
// anything unknown.
func profileField(p *domain.UserProfile, field string) any {
	switch field {
	case "profileScore":
		return p.ProfileScore
	case "userId":
		return p.UserID
	case "username":
		return p.Username
	case "loyaltyScore":
		if p.Stickiness == nil {
			return nil
		}
		return p.Stickiness.LoyaltyScore
	case "avgOrderValue":
		if p.ValueAssessment == nil {
			return nil
		}
		return p.ValueAssessment.AvgOrderValue
	case "consumptionLevel":
		if p.ValueAssessment == nil {
			return nil
		}
		return p.ValueAssessment.ConsumptionLevel
	case "profileQuality":
		if p.ValueAssessment == nil {
			return nil
		}
		return p.ValueAssessment.ProfileQuality
	default:
		return nil
	}
}

func valuesEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
		return false
	}
	return toString(a) == toString(b)
}

func compareNumeric(a, b any) (int, bool) {
	fa, ok := toFloat(a)
	if !ok {
		return 0, false
	}
	fb, ok := toFloat(b)
	if !ok {
		return 0, false
	}

	switch {
	case fa > fb:
		return 1, true
	case fa < fb:
		return -1, true
	default:
		return 0, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
