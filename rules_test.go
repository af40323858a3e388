package stateful

import (
	"testing"
)

func TestEffectiveDurationTiers(t *testing.T) {
	r := &Resolver{Global: &GlobalSettings{DefaultDuration: 1.0}}
	r.Reindex()
	assertNear(t, "global default", r.EffectiveDuration(nil), 1.0)

	r.Group = &GroupSettings{OverrideDuration: true, Duration: 0.5}
	assertNear(t, "group override", r.EffectiveDuration(nil), 0.5)

	r.Instance = InstanceOverrides{OverrideDuration: true, Duration: 0.25}
	assertNear(t, "instance override", r.EffectiveDuration(nil), 0.25)

	explicit := 0.1
	assertNear(t, "explicit value", r.EffectiveDuration(&explicit), 0.1)

	// An explicit zero is a real override, not "unset".
	zero := 0.0
	assertNear(t, "explicit zero", r.EffectiveDuration(&zero), 0)

	// A group without the flag set does not shadow the global default.
	r.Instance = InstanceOverrides{}
	r.Group = &GroupSettings{Duration: 9}
	assertNear(t, "unflagged group ignored", r.EffectiveDuration(nil), 1.0)
}

func TestEffectiveEaseTiers(t *testing.T) {
	r := &Resolver{}
	r.Reindex()
	if got := r.EffectiveEase(nil); got != Linear {
		t.Errorf("empty tiers = %v, want Linear", got)
	}

	r.Global = &GlobalSettings{DefaultEase: OutQuad}
	if got := r.EffectiveEase(nil); got != OutQuad {
		t.Errorf("global default = %v, want OutQuad", got)
	}

	r.Group = &GroupSettings{OverrideEase: true, Ease: OutBack}
	if got := r.EffectiveEase(nil); got != OutBack {
		t.Errorf("group override = %v, want OutBack", got)
	}

	r.Instance = InstanceOverrides{OverrideEase: true, Ease: InCubic}
	if got := r.EffectiveEase(nil); got != InCubic {
		t.Errorf("instance override = %v, want InCubic", got)
	}

	explicit := OutBounce
	if got := r.EffectiveEase(&explicit); got != OutBounce {
		t.Errorf("explicit value = %v, want OutBounce", got)
	}
}

func TestMatchRuleExactAndWildcard(t *testing.T) {
	r := &Resolver{Global: &GlobalSettings{Rules: []OverrideRule{
		{Property: "X", Component: "stateful.Transform", OverrideEase: true, Ease: OutBack},
		{Property: "X", OverrideEase: true, Ease: OutQuad},
		{Property: "Alpha", PathWildcard: "*_button", Instant: true},
	}}}
	r.Reindex()

	// Component-qualified exact match beats the any-component entry.
	if got := r.MatchRule("X", "stateful.Transform", "Panel"); got == nil || got.Ease != OutBack {
		t.Errorf("component-qualified match = %+v, want OutBack rule", got)
	}
	// Other components fall through to the any-component entry.
	if got := r.MatchRule("X", "test.widget", "Panel"); got == nil || got.Ease != OutQuad {
		t.Errorf("any-component match = %+v, want OutQuad rule", got)
	}
	// Wildcards match across path separators.
	if got := r.MatchRule("Alpha", "stateful.Sprite", "Panel/OK_button"); got == nil || !got.Instant {
		t.Errorf("wildcard match = %+v, want instant rule", got)
	}
	if got := r.MatchRule("Alpha", "stateful.Sprite", "Panel/Title_label"); got != nil {
		t.Errorf("non-matching path returned %+v, want nil", got)
	}
	if got := r.MatchRule("Y", "stateful.Transform", "Panel"); got != nil {
		t.Errorf("unmatched property returned %+v, want nil", got)
	}
}

func TestMatchRuleGroupBeforeGlobal(t *testing.T) {
	r := &Resolver{
		Global: &GlobalSettings{Rules: []OverrideRule{
			{Property: "X", OverrideEase: true, Ease: OutQuad},
		}},
		Group: &GroupSettings{Rules: []OverrideRule{
			{Property: "X", OverrideEase: true, Ease: InElastic},
		}},
	}
	r.Reindex()
	if got := r.MatchRule("X", "", "Panel"); got == nil || got.Ease != InElastic {
		t.Errorf("got %+v, want the group rule", got)
	}
}

func TestMatchRuleFirstListedWins(t *testing.T) {
	r := &Resolver{Global: &GlobalSettings{Rules: []OverrideRule{
		{Property: "X", OverrideEase: true, Ease: OutQuad},
		{Property: "X", OverrideEase: true, Ease: InQuad},
		{Property: "Y", PathWildcard: "Panel/*", OverrideEase: true, Ease: OutSine},
		{Property: "Y", PathWildcard: "*", OverrideEase: true, Ease: InSine},
	}}}
	r.Reindex()
	if got := r.MatchRule("X", "", "any"); got == nil || got.Ease != OutQuad {
		t.Errorf("duplicate exact rules: got %+v, want the first", got)
	}
	if got := r.MatchRule("Y", "", "Panel/child"); got == nil || got.Ease != OutSine {
		t.Errorf("overlapping wildcards: got %+v, want the first listed", got)
	}
}

func TestMatchRuleComponentFilterOnWildcard(t *testing.T) {
	r := &Resolver{Global: &GlobalSettings{Rules: []OverrideRule{
		{Property: "Color.A", Component: "stateful.Sprite", PathWildcard: "*_button", Instant: true},
	}}}
	r.Reindex()
	if got := r.MatchRule("Color.A", "stateful.Sprite", "OK_button"); got == nil {
		t.Error("matching component and path should match")
	}
	if got := r.MatchRule("Color.A", "test.widget", "OK_button"); got != nil {
		t.Error("wrong component should not match")
	}
}

func TestRuleMultiplier(t *testing.T) {
	tests := []struct {
		name string
		rule OverrideRule
		want float64
	}{
		{"no custom timing", OverrideRule{}, 1},
		{"pauses", OverrideRule{CustomTiming: true, StartPause: 1, EndPause: 0.5}, 2.5},
		{"instant ignores pauses", OverrideRule{CustomTiming: true, StartPause: 1, Instant: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertNear(t, "multiplier", tt.rule.multiplier(), tt.want)
		})
	}
}
