package stateful

// Controller is the façade binding the state store, override resolver, and
// transition engine to a single object-graph root. Create one per root,
// load state data and settings into it, then drive it with SnapToState /
// TweenToState and one Update call per host tick.
//
// The controller never returns errors from its state operations: missing
// states, unresolvable properties, and invocation failures are logged and
// recovered per property, matching authoring-tool expectations where one
// bad binding must not kill the rest of the transition.
type Controller struct {
	root     *Node
	store    *StateStore
	resolver *Resolver
	engine   *Engine
}

// NewController creates a controller over the given root node with empty
// settings tiers.
func NewController(root *Node) *Controller {
	if root == nil {
		panic("stateful: controller root must not be nil")
	}
	store := NewStateStore()
	resolver := &Resolver{}
	resolver.Reindex()
	return &Controller{
		root:     root,
		store:    store,
		resolver: resolver,
		engine:   NewEngine(root, store, resolver),
	}
}

// Root returns the controller's root node.
func (c *Controller) Root() *Node {
	return c.root
}

// LoadMachine replaces the controller's state machine and rebuilds the
// transition cache. The previous machine is replaced atomically; an
// in-flight transition keeps its captured plan and finishes against the
// old targets.
func (c *Controller) LoadMachine(m *StateMachine) {
	c.store.Load(m)
	c.store.Rebuild(c.resolver)
}

// LoadFile loads a YAML state machine document from disk and installs it.
func (c *Controller) LoadFile(path string) error {
	m, err := LoadMachineFile(path)
	if err != nil {
		return err
	}
	c.LoadMachine(m)
	return nil
}

// StateNames returns the loaded state names in declaration order.
func (c *Controller) StateNames() []string {
	return c.store.Machine().StateNames()
}

// SetGlobalSettings installs the global configuration tier and rebuilds
// the rule index and transition cache.
func (c *Controller) SetGlobalSettings(s *GlobalSettings) {
	c.resolver.Global = s
	c.settingsChanged()
}

// SetGroupSettings installs the group configuration tier and rebuilds the
// rule index and transition cache.
func (c *Controller) SetGroupSettings(s *GroupSettings) {
	c.resolver.Group = s
	c.settingsChanged()
}

// SetInstanceOverrides installs this root's override flags and values.
func (c *Controller) SetInstanceOverrides(o InstanceOverrides) {
	c.resolver.Instance = o
	c.settingsChanged()
}

func (c *Controller) settingsChanged() {
	c.resolver.Reindex()
	c.store.Rebuild(c.resolver)
}

// ApplySettings installs the global tier from a parsed settings document
// plus the named group tier (pass the empty string for no group).
func (c *Controller) ApplySettings(asset *SettingsAsset, group string) {
	c.resolver.Global = &asset.Global
	c.resolver.Group = asset.Group(group)
	c.settingsChanged()
}

// LoadSettingsFile loads a YAML settings document from disk and applies
// it with the named group tier.
func (c *Controller) LoadSettingsFile(path, group string) error {
	asset, err := LoadSettingsFile(path)
	if err != nil {
		return err
	}
	c.ApplySettings(asset, group)
	return nil
}

// SetAssets installs the source object-reference assignments resolve
// against.
func (c *Controller) SetAssets(assets AssetSource) {
	c.engine.SetAssets(assets)
}

// SetPreview toggles interactive-preview mode: per-property transition
// info is resolved fresh on every call instead of served from the cache,
// so settings edits take effect without an explicit rebuild.
func (c *Controller) SetPreview(enabled bool) {
	c.engine.SetPreview(enabled)
}

// SnapToState applies every assignment in the named state immediately.
// A missing state logs and does nothing.
func (c *Controller) SnapToState(name string) {
	state := c.store.Find(name)
	if state == nil {
		logf("state %q not found", name)
		return
	}
	c.engine.CancelActive()
	c.engine.Snap(state)
}

// TweenToState starts an animated transition to the named state,
// cancelling any in-flight transition on this root first. The returned
// handle completes when the transition finishes or is superseded; a
// missing state logs and returns an already-completed handle.
func (c *Controller) TweenToState(name string, opts ...TweenOptions) *Handle {
	state := c.store.Find(name)
	if state == nil {
		logf("state %q not found", name)
		return completedHandle()
	}
	var o TweenOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return c.engine.TweenTo(state, o)
}

// Update advances the in-flight transition by dt seconds. Call once per
// host tick; no-op while idle.
func (c *Controller) Update(dt float64) {
	c.engine.Step(dt)
}

// InFlight reports whether a transition is currently animating.
func (c *Controller) InFlight() bool {
	return c.engine.InFlight()
}

// Cancel stops any in-flight transition, running its deferred
// deactivations and completing its handle.
func (c *Controller) Cancel() {
	c.engine.CancelActive()
}

// ClearBindingCache drops this root's resolved bindings. Use after
// restructuring the graph or detaching components. Compiled delegates
// shared across roots survive; see ClearDelegateCache.
func (c *Controller) ClearBindingCache() {
	c.engine.ClearBindings()
}
