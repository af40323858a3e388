package stateful

// OverrideRule declaratively retimes matching properties: it can force an
// easing curve, mark the property instant, and/or add pause phases before
// and after the eased segment (expressed in multiples of the base
// duration). Rules live on group and global settings; the group list is
// consulted first.
//
// A rule matches when the property name matches (always required), the
// component name matches if the rule specifies one, and the node path
// matches the rule's wildcard if it specifies one — the AND of every
// specified condition, first listed rule wins.
type OverrideRule struct {
	Property     string
	Component    string // optional component-type filter
	PathWildcard string // optional glob over the node path; * and ? supported

	OverrideEase bool
	Ease         Ease

	Instant bool // force duration zero for matching properties

	CustomTiming bool
	StartPause   float64 // pause before the eased segment, in duration-multiples
	EndPause     float64 // pause after the eased segment, in duration-multiples
}

// multiplier returns how much a matching property's timeline stretches:
// startPause + 1 + endPause, or 1 when custom timing is off or the property
// is instant.
func (r *OverrideRule) multiplier() float64 {
	if r == nil || !r.CustomTiming || r.Instant {
		return 1
	}
	return r.StartPause + 1 + r.EndPause
}

// GlobalSettings is the lowest configuration tier: process defaults plus
// the global rule list and shared curve overrides. SavePath is an authoring
// hint carried through from the settings asset; the engine ignores it.
type GlobalSettings struct {
	DefaultDuration float64
	DefaultEase     Ease
	Rules           []OverrideRule
	Curves          *CurveSet
	SavePath        string
}

// GroupSettings is the middle tier: per-group override flags and values,
// the group rule list, and group curve overrides. The flag/value pairs
// mirror the instance tier so zero values stay distinguishable from
// explicit overrides.
type GroupSettings struct {
	OverrideDuration bool
	Duration         float64
	OverrideEase     bool
	Ease             Ease
	Rules            []OverrideRule
	Curves           *CurveSet
}

// InstanceOverrides is the per-root tier: flags and values set directly on
// one controller.
type InstanceOverrides struct {
	OverrideDuration bool
	Duration         float64
	OverrideEase     bool
	Ease             Ease
}

// Resolver computes effective duration, ease, and per-property rule matches
// from the configuration tiers. Call Reindex after mutating any tier's rule
// list; the Controller does this automatically when settings change.
type Resolver struct {
	Global   *GlobalSettings
	Group    *GroupSettings
	Instance InstanceOverrides

	groupRules  ruleIndex
	globalRules ruleIndex
}

// EffectiveDuration resolves the transition duration: per-call explicit
// value > instance > group > global default.
func (r *Resolver) EffectiveDuration(explicit *float64) float64 {
	switch {
	case explicit != nil:
		return *explicit
	case r.Instance.OverrideDuration:
		return r.Instance.Duration
	case r.Group != nil && r.Group.OverrideDuration:
		return r.Group.Duration
	case r.Global != nil:
		return r.Global.DefaultDuration
	}
	return 0
}

// EffectiveEase resolves the default easing kind with the same tier order
// as EffectiveDuration. Per-property rule eases override the result.
func (r *Resolver) EffectiveEase(explicit *Ease) Ease {
	switch {
	case explicit != nil:
		return *explicit
	case r.Instance.OverrideEase:
		return r.Instance.Ease
	case r.Group != nil && r.Group.OverrideEase:
		return r.Group.Ease
	case r.Global != nil:
		return r.Global.DefaultEase
	}
	return Linear
}

// curveSets returns the override curve sets in precedence order for
// curveFor: group before global.
func (r *Resolver) curveSets() (group, global *CurveSet) {
	if r.Group != nil {
		group = r.Group.Curves
	}
	if r.Global != nil {
		global = r.Global.Curves
	}
	return group, global
}

// Reindex rebuilds the per-tier rule indexes. Rules without a path wildcard
// are indexed by (property, component) for O(1) lookup; wildcard rules stay
// in listed order for the linear fallback scan.
func (r *Resolver) Reindex() {
	r.groupRules = ruleIndex{}
	r.globalRules = ruleIndex{}
	if r.Group != nil {
		r.groupRules = indexRules(r.Group.Rules)
	}
	if r.Global != nil {
		r.globalRules = indexRules(r.Global.Rules)
	}
}

// MatchRule finds the first rule matching a property: group tier first,
// then global; within a tier, the exact index first, then wildcard rules in
// listed order. Returns nil when nothing matches.
func (r *Resolver) MatchRule(property, component, path string) *OverrideRule {
	if rule := r.groupRules.match(property, component, path); rule != nil {
		return rule
	}
	return r.globalRules.match(property, component, path)
}

// --- Rule indexing ---

type ruleKey struct {
	property  string
	component string
}

type ruleIndex struct {
	exact map[ruleKey]*OverrideRule
	wild  []*OverrideRule
}

func indexRules(rules []OverrideRule) ruleIndex {
	idx := ruleIndex{exact: make(map[ruleKey]*OverrideRule, len(rules))}
	for i := range rules {
		rule := &rules[i]
		if rule.PathWildcard != "" {
			idx.wild = append(idx.wild, rule)
			continue
		}
		key := ruleKey{rule.Property, rule.Component}
		if _, exists := idx.exact[key]; !exists {
			idx.exact[key] = rule // first listed rule wins
		}
	}
	return idx
}

func (idx ruleIndex) match(property, component, path string) *OverrideRule {
	if idx.exact != nil {
		if rule, ok := idx.exact[ruleKey{property, component}]; ok {
			return rule
		}
		if component != "" {
			if rule, ok := idx.exact[ruleKey{property, ""}]; ok {
				return rule
			}
		}
	}
	for _, rule := range idx.wild {
		if rule.Property != property {
			continue
		}
		if rule.Component != "" && rule.Component != component {
			continue
		}
		if matchWildcard(rule.PathWildcard, path) {
			return rule
		}
	}
	return nil
}

// matchWildcard matches pattern against s with * (any run, including path
// separators) and ? (any single character). Iterative greedy matching with
// backtracking over the last star.
func matchWildcard(pattern, s string) bool {
	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == s[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
