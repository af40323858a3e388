package stateful

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// State data and settings travel as YAML documents. A state machine
// document looks like:
//
//	states:
//	  - name: shown
//	    time: 0.5
//	    properties:
//	      - path: Panel
//	        property: active
//	        value: 1
//	      - path: Panel/OK_button
//	        component: stateful.Transform
//	        property: X
//	        value: 120
//	      - path: Panel/Icon
//	        component: stateful.Sprite
//	        property: Image
//	        ref: icon_ok
//
// A settings document carries the global tier inline plus named groups:
//
//	default_duration: 0.35
//	default_ease: OutQuad
//	rules:
//	  - property: Color.A
//	    component: stateful.Sprite
//	    path: "*_button"
//	    ease: OutBounce
//	groups:
//	  hud:
//	    duration: 0.2
//	    ease: OutBack

// LoadMachine parses a YAML state machine document.
func LoadMachine(data []byte) (*StateMachine, error) {
	var m StateMachine
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("stateful: parse state machine: %w", err)
	}
	return &m, nil
}

// LoadMachineFile reads and parses a YAML state machine document.
func LoadMachineFile(path string) (*StateMachine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stateful: load %s: %w", path, err)
	}
	m, err := LoadMachine(data)
	if err != nil {
		return nil, fmt.Errorf("stateful: %s: %w", path, err)
	}
	return m, nil
}

// SettingsAsset is a parsed settings document: the global tier plus named
// group tiers.
type SettingsAsset struct {
	Global GlobalSettings
	Groups map[string]*GroupSettings
}

// Group returns the named group settings, or nil.
func (s *SettingsAsset) Group(name string) *GroupSettings {
	if s == nil {
		return nil
	}
	return s.Groups[name]
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SettingsAsset) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		DefaultDuration float64                   `yaml:"default_duration"`
		DefaultEase     Ease                      `yaml:"default_ease"`
		SavePath        string                    `yaml:"save_path"`
		Rules           []OverrideRule            `yaml:"rules"`
		Curves          *CurveSet                 `yaml:"curves"`
		Groups          map[string]*GroupSettings `yaml:"groups"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Global = GlobalSettings{
		DefaultDuration: raw.DefaultDuration,
		DefaultEase:     raw.DefaultEase,
		Rules:           raw.Rules,
		Curves:          raw.Curves,
		SavePath:        raw.SavePath,
	}
	s.Groups = raw.Groups
	return nil
}

// LoadSettings parses a YAML settings document.
func LoadSettings(data []byte) (*SettingsAsset, error) {
	var s SettingsAsset
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("stateful: parse settings: %w", err)
	}
	return &s, nil
}

// LoadSettingsFile reads and parses a YAML settings document.
func LoadSettingsFile(path string) (*SettingsAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("stateful: load %s: %w", path, err)
	}
	s, err := LoadSettings(data)
	if err != nil {
		return nil, fmt.Errorf("stateful: %s: %w", path, err)
	}
	return s, nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Unknown ease names log and
// fall back to Linear, mirroring curve evaluation behavior.
func (e *Ease) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	kind, ok := ParseEase(name)
	if !ok {
		logf("unknown ease %q, using Linear", name)
	}
	*e = kind
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e Ease) MarshalYAML() (any, error) {
	return e.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Presence of the ease key sets
// OverrideEase; presence of either pause key enables custom timing.
func (r *OverrideRule) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Property   string   `yaml:"property"`
		Component  string   `yaml:"component"`
		Path       string   `yaml:"path"`
		Ease       *Ease    `yaml:"ease"`
		Instant    bool     `yaml:"instant"`
		StartPause *float64 `yaml:"start_pause"`
		EndPause   *float64 `yaml:"end_pause"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = OverrideRule{
		Property:     raw.Property,
		Component:    raw.Component,
		PathWildcard: raw.Path,
		Instant:      raw.Instant,
	}
	if raw.Ease != nil {
		r.OverrideEase = true
		r.Ease = *raw.Ease
	}
	if raw.StartPause != nil || raw.EndPause != nil {
		r.CustomTiming = true
		if raw.StartPause != nil {
			r.StartPause = *raw.StartPause
		}
		if raw.EndPause != nil {
			r.EndPause = *raw.EndPause
		}
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Presence of the duration or
// ease key sets the corresponding override flag.
func (g *GroupSettings) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Duration *float64       `yaml:"duration"`
		Ease     *Ease          `yaml:"ease"`
		Rules    []OverrideRule `yaml:"rules"`
		Curves   *CurveSet      `yaml:"curves"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*g = GroupSettings{Rules: raw.Rules, Curves: raw.Curves}
	if raw.Duration != nil {
		g.OverrideDuration = true
		g.Duration = *raw.Duration
	}
	if raw.Ease != nil {
		g.OverrideEase = true
		g.Ease = *raw.Ease
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. A curve set document maps
// ease names to keyframe lists.
func (s *CurveSet) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string][]Keyframe
	if err := node.Decode(&raw); err != nil {
		return err
	}
	for name, keys := range raw {
		kind, ok := ParseEase(name)
		if !ok {
			logf("curve override for unknown ease %q ignored", name)
			continue
		}
		s.Set(kind, &Curve{Keys: keys})
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Omitted weights default to
// the Hermite-equivalent 1/3.
func (k *Keyframe) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		T         float64  `yaml:"t"`
		Value     float64  `yaml:"value"`
		InTan     float64  `yaml:"in_tan"`
		OutTan    float64  `yaml:"out_tan"`
		InWeight  *float64 `yaml:"in_weight"`
		OutWeight *float64 `yaml:"out_weight"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*k = Keyframe{
		T: raw.T, Value: raw.Value,
		InTan: raw.InTan, OutTan: raw.OutTan,
		InWeight: defaultWeight, OutWeight: defaultWeight,
	}
	if raw.InWeight != nil {
		k.InWeight = *raw.InWeight
	}
	if raw.OutWeight != nil {
		k.OutWeight = *raw.OutWeight
	}
	return nil
}
