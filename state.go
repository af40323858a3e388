package stateful

// PropertyAssignment is one target-property value inside a State: the
// address of a node (slash-delimited path relative to the controller root),
// the registered component type holding the member (empty or NodeComponent
// for the node itself), the member name (one dot level of nesting allowed,
// or the ActiveProperty sentinel), and the payload — a numeric value, or an
// object-reference name that supersedes numeric tweening when set.
type PropertyAssignment struct {
	Path      string  `yaml:"path"`
	Component string  `yaml:"component,omitempty"`
	Property  string  `yaml:"property"`
	Value     float64 `yaml:"value,omitempty"`
	ObjectRef string  `yaml:"ref,omitempty"`
}

// State is a named snapshot of target property values. Time is authoring
// metadata (the timeline position the state was recorded at); the engine
// never reads it.
type State struct {
	Name       string               `yaml:"name"`
	Time       float64              `yaml:"time,omitempty"`
	Properties []PropertyAssignment `yaml:"properties"`
}

// StateMachine is the ordered list of states a controller can snap or
// tween to. Loaded wholesale from a state data asset and replaced
// atomically on reload.
type StateMachine struct {
	States []State `yaml:"states"`
}

// Find returns the first state with the given name, or nil. Name
// uniqueness is not enforced; first match wins.
func (m *StateMachine) Find(name string) *State {
	if m == nil {
		return nil
	}
	for i := range m.States {
		if m.States[i].Name == name {
			return &m.States[i]
		}
	}
	return nil
}

// StateNames returns the state names in declaration order, duplicates
// included.
func (m *StateMachine) StateNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, len(m.States))
	for i := range m.States {
		names[i] = m.States[i].Name
	}
	return names
}

// TransitionInfo is the cached per-assignment resolution result: how long,
// through which curve, and with what timing shape the property moves.
type TransitionInfo struct {
	Ease         Ease
	EaseForced   bool // a matched rule forced the ease; per-call overrides lose
	Instant      bool
	CustomTiming bool
	StartPause   float64
	EndPause     float64
}

// multiplier returns the timeline stretch for this property: startPause +
// 1 + endPause when custom timing is active, otherwise 1. Instant
// properties never stretch.
func (i *TransitionInfo) multiplier() float64 {
	if !i.CustomTiming || i.Instant {
		return 1
	}
	return i.StartPause + 1 + i.EndPause
}

// StateStore owns the loaded state machine and the per-assignment
// transition-info cache. The cache makes lookups during a transition O(1)
// and allocation-free; it must be rebuilt whenever the owning root's
// configuration tiers change.
type StateStore struct {
	machine *StateMachine
	infos   map[*PropertyAssignment]TransitionInfo
}

// NewStateStore returns an empty store.
func NewStateStore() *StateStore {
	return &StateStore{infos: make(map[*PropertyAssignment]TransitionInfo)}
}

// Load replaces the store's state machine. The transition cache is dropped;
// call Rebuild with the current resolver before tweening.
func (s *StateStore) Load(machine *StateMachine) {
	s.machine = machine
	s.infos = make(map[*PropertyAssignment]TransitionInfo)
}

// Machine returns the loaded state machine, or nil.
func (s *StateStore) Machine() *StateMachine {
	return s.machine
}

// Find returns the first loaded state with the given name, or nil.
func (s *StateStore) Find(name string) *State {
	return s.machine.Find(name)
}

// Rebuild resolves transition info for every assignment in every state and
// caches it keyed by assignment identity.
func (s *StateStore) Rebuild(r *Resolver) {
	s.infos = make(map[*PropertyAssignment]TransitionInfo, len(s.infos))
	if s.machine == nil {
		return
	}
	for si := range s.machine.States {
		state := &s.machine.States[si]
		for pi := range state.Properties {
			a := &state.Properties[pi]
			s.infos[a] = resolveInfo(r, a)
		}
	}
}

// Info returns the cached transition info for an assignment, or resolves it
// live when live is true (interactive preview mode) or the cache is cold.
func (s *StateStore) Info(r *Resolver, a *PropertyAssignment, live bool) TransitionInfo {
	if !live {
		if info, ok := s.infos[a]; ok {
			return info
		}
	}
	return resolveInfo(r, a)
}

// resolveInfo computes one assignment's transition info from the resolver's
// tiers and rule lists.
func resolveInfo(r *Resolver, a *PropertyAssignment) TransitionInfo {
	info := TransitionInfo{Ease: r.EffectiveEase(nil)}
	rule := r.MatchRule(a.Property, a.Component, a.Path)
	if rule == nil {
		return info
	}
	if rule.OverrideEase {
		info.Ease = rule.Ease
		info.EaseForced = true
	}
	info.Instant = rule.Instant
	if rule.CustomTiming && !rule.Instant {
		info.CustomTiming = true
		info.StartPause = rule.StartPause
		info.EndPause = rule.EndPause
	}
	return info
}
