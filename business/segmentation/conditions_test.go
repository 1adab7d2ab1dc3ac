//go:build !integration

package segmentation

import (
	"testing"

	"profileHub/domain"
)

func profileWith(score float64, username string) *domain.UserProfile {
	return &domain.UserProfile{
		UserID:       1,
		Username:     username,
		ProfileScore: score,
		Stickiness:   &domain.Stickiness{LoyaltyScore: 75},
	}
}

func TestMatchesConditions_EmptyListMatchesAll(t *testing.T) {
	if !MatchesConditions(profileWith(10, "a"), nil) {
		t.Errorf("empty condition list must match every profile")
	}
}

func TestMatchesConditions_Operators(t *testing.T) {
	p := profileWith(65.5, "alice-premium")

	cases := []struct {
		name string
		cond domain.SegmentCondition
		want bool
	}{
		{"equals", domain.SegmentCondition{Field: "username", Operator: domain.OpEquals, Value: "alice-premium"}, true},
		{"not equals", domain.SegmentCondition{Field: "username", Operator: domain.OpNotEquals, Value: "bob"}, true},
		{"greater than", domain.SegmentCondition{Field: "profileScore", Operator: domain.OpGreaterThan, Value: 60}, true},
		{"greater than fails", domain.SegmentCondition{Field: "profileScore", Operator: domain.OpGreaterThan, Value: 70}, false},
		{"less than", domain.SegmentCondition{Field: "profileScore", Operator: domain.OpLessThan, Value: 70}, true},
		{"greater or equal boundary", domain.SegmentCondition{Field: "profileScore", Operator: domain.OpGreaterOrEqual, Value: 65.5}, true},
		{"less or equal boundary", domain.SegmentCondition{Field: "profileScore", Operator: domain.OpLessOrEqual, Value: 65.5}, true},
		{"contains", domain.SegmentCondition{Field: "username", Operator: domain.OpContains, Value: "premium"}, true},
		{"not contains", domain.SegmentCondition{Field: "username", Operator: domain.OpNotContains, Value: "trial"}, true},
		{"is not null", domain.SegmentCondition{Field: "loyaltyScore", Operator: domain.OpIsNotNull}, true},
		{"numeric equals across types", domain.SegmentCondition{Field: "loyaltyScore", Operator: domain.OpEquals, Value: 75}, true},
	}

	for _, c := range cases {
		got := MatchesConditions(p, []domain.SegmentCondition{c.cond})
		if got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, got, c.want)
		}
	}
}

func TestMatchesConditions_UnknownFieldOnlyMatchesIsNull(t *testing.T) {
	p := profileWith(50, "a")

	isNull := domain.SegmentCondition{Field: "nonexistent", Operator: domain.OpIsNull}
	if !MatchesConditions(p, []domain.SegmentCondition{isNull}) {
		t.Errorf("unknown field should satisfy IS_NULL")
	}

	equals := domain.SegmentCondition{Field: "nonexistent", Operator: domain.OpEquals, Value: "x"}
	if MatchesConditions(p, []domain.SegmentCondition{equals}) {
		t.Errorf("unknown field must fail every other operator")
	}
}

func TestMatchesConditions_NilSubObject(t *testing.T) {
	p := &domain.UserProfile{UserID: 1, ProfileScore: 50}

	cond := domain.SegmentCondition{Field: "loyaltyScore", Operator: domain.OpGreaterThan, Value: 10}
	if MatchesConditions(p, []domain.SegmentCondition{cond}) {
		t.Errorf("missing stickiness must not satisfy a numeric comparison")
	}

	isNull := domain.SegmentCondition{Field: "loyaltyScore", Operator: domain.OpIsNull}
	if !MatchesConditions(p, []domain.SegmentCondition{isNull}) {
		t.Errorf("missing stickiness should satisfy IS_NULL")
	}
}

// The condition list folds left to right with no precedence: each condition's
// Logic decides how the next one combines.
func TestMatchesConditions_LeftFold(t *testing.T) {
	p := profileWith(65, "alice")

	// false AND ... OR true  evaluates as (false) then OR true -> true
	conds := []domain.SegmentCondition{
		{Field: "profileScore", Operator: domain.OpGreaterThan, Value: 90, Logic: "OR"},
		{Field: "username", Operator: domain.OpEquals, Value: "alice"},
	}
	if !MatchesConditions(p, conds) {
		t.Errorf("OR chain should rescue a failed first condition")
	}

	// true AND false -> false
	conds = []domain.SegmentCondition{
		{Field: "profileScore", Operator: domain.OpGreaterThan, Value: 60, Logic: "AND"},
		{Field: "username", Operator: domain.OpEquals, Value: "bob"},
	}
	if MatchesConditions(p, conds) {
		t.Errorf("AND chain must fail when any condition fails")
	}

	// (true OR false) AND false -> left fold: ((true) OR false) AND false = false
	conds = []domain.SegmentCondition{
		{Field: "profileScore", Operator: domain.OpGreaterThan, Value: 60, Logic: "OR"},
		{Field: "username", Operator: domain.OpEquals, Value: "bob", Logic: "AND"},
		{Field: "username", Operator: domain.OpEquals, Value: "carol"},
	}
	if MatchesConditions(p, conds) {
		t.Errorf("trailing AND false must sink the whole chain")
	}
}

func TestMatchesConditions_Idempotent(t *testing.T) {
	p := profileWith(65, "alice")
	conds := []domain.SegmentCondition{
		{Field: "profileScore", Operator: domain.OpGreaterOrEqual, Value: 60, Logic: "AND"},
		{Field: "username", Operator: domain.OpContains, Value: "ali"},
	}

	first := MatchesConditions(p, conds)
	for i := 0; i < 5; i++ {
		if MatchesConditions(p, conds) != first {
			t.Fatalf("evaluation is not deterministic")
		}
	}
	if !first {
		t.Errorf("expected profile to match")
	}
}
