package stateful

import (
	"context"
)

// TweenOptions carries the optional per-call overrides for TweenToState.
// The flag/value pairs mirror the group and instance settings tiers so an
// explicit zero duration stays distinguishable from "not specified".
type TweenOptions struct {
	// Context is an optional external cancellation signal, checked at the
	// top of each step alongside the engine's own single-flight token.
	Context context.Context

	OverrideDuration bool
	Duration         float64

	OverrideEase bool
	Ease         Ease
}

// Handle reports the completion of one transition. Cancellation counts as
// completion: the handle's channel closes either way, and Cancelled tells
// the two apart.
type Handle struct {
	done      chan struct{}
	completed bool
	cancelled bool
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// completedHandle returns an already-finished handle, used when there is
// nothing to animate (missing state, all properties snapped).
func completedHandle() *Handle {
	h := newHandle()
	h.finish(false)
	return h
}

func (h *Handle) finish(cancelled bool) {
	if h.completed {
		return
	}
	h.completed = true
	h.cancelled = cancelled
	close(h.done)
}

// Done returns a channel closed when the transition finishes or is
// cancelled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Completed reports whether the transition has finished (including by
// cancellation).
func (h *Handle) Completed() bool {
	return h.completed
}

// Cancelled reports whether the transition was superseded by a newer one or
// stopped through its context.
func (h *Handle) Cancelled() bool {
	return h.cancelled
}

// bindingKey identifies a resolved binding within one root's cache.
type bindingKey struct {
	path      string
	component string
	property  string
}

// tweenProp is one interpolated property of an in-flight transition.
type tweenProp struct {
	binding    *Binding
	start      float64
	target     float64
	curve      *Curve
	startPause float64
	multiplier float64
	failed     bool // invocation error logged; skip for the rest of the run
}

// transition is one in-flight tween. The generation token implements the
// single-flight policy: a newer TweenTo bumps the engine's generation, and
// a stale transition's next step becomes a cleanup no-op.
type transition struct {
	gen      uint64
	handle   *Handle
	ctx      context.Context
	elapsed  float64
	duration float64
	props    []tweenProp
	deferred []*Binding // back-loaded deactivations, run even on cancellation
}

// Engine orchestrates transitions for a single root. It is step-driven and
// single-flight: at most one transition is in flight, advanced once per
// host tick through Step.
type Engine struct {
	root     *Node
	store    *StateStore
	resolver *Resolver
	assets   AssetSource
	preview  bool

	bindings map[bindingKey]*Binding

	generation uint64
	current    *transition

	// Reused across transitions so steady-state tweening does not allocate.
	propsBuf    []tweenProp
	deferredBuf []*Binding
}

// NewEngine creates an engine over the given root, store, and resolver.
func NewEngine(root *Node, store *StateStore, resolver *Resolver) *Engine {
	return &Engine{
		root:     root,
		store:    store,
		resolver: resolver,
		bindings: make(map[bindingKey]*Binding),
	}
}

// SetAssets installs the source used to resolve object-reference names.
func (e *Engine) SetAssets(assets AssetSource) {
	e.assets = assets
}

// SetPreview toggles interactive-preview mode: transition info is resolved
// live on every request instead of trusting the store's cache.
func (e *Engine) SetPreview(enabled bool) {
	e.preview = enabled
}

// InFlight reports whether a transition is currently animating.
func (e *Engine) InFlight() bool {
	return e.current != nil
}

// ClearBindings drops this root's resolved bindings. Use after detaching
// components or restructuring the graph.
func (e *Engine) ClearBindings() {
	e.bindings = make(map[bindingKey]*Binding)
}

// binding returns the cached binding for an assignment, resolving and
// caching it on first use.
func (e *Engine) binding(a *PropertyAssignment) (*Binding, error) {
	key := bindingKey{a.Path, a.Component, a.Property}
	if b, ok := e.bindings[key]; ok {
		return b, nil
	}
	b, err := Resolve(e.root, a)
	if err != nil {
		return nil, err
	}
	e.bindings[key] = b
	return b, nil
}

// applyObject resolves an assignment's object reference through the asset
// source and assigns it.
func (e *Engine) applyObject(b *Binding, a *PropertyAssignment) {
	if e.assets == nil {
		logf("no asset source configured, cannot assign %q to %s.%s", a.ObjectRef, a.Path, a.Property)
		return
	}
	ref, ok := e.assets.Asset(a.ObjectRef)
	if !ok {
		logf("asset %q not found for %s.%s", a.ObjectRef, a.Path, a.Property)
		return
	}
	if err := b.SetObject(ref); err != nil {
		logf("assign %q to %s.%s: %v", a.ObjectRef, a.Path, a.Property, err)
	}
}

// snapAssignment applies one assignment immediately through its binding.
func (e *Engine) snapAssignment(a *PropertyAssignment) {
	b, err := e.binding(a)
	if err != nil {
		logf("%v", err)
		return
	}
	if b.Kind == AccessorObject {
		e.applyObject(b, a)
		return
	}
	if err := b.SetValue(a.Value); err != nil {
		logf("snap %s.%s: %v", a.Path, a.Property, err)
	}
}

// Snap applies every assignment in the state immediately. It does not
// disturb an in-flight transition; cancel first if that matters.
func (e *Engine) Snap(state *State) {
	for i := range state.Properties {
		e.snapAssignment(&state.Properties[i])
	}
}

// CancelActive cancels any in-flight transition, running its deferred
// deactivations and completing its handle. Safe to call when idle.
func (e *Engine) CancelActive() {
	t := e.current
	if t == nil {
		return
	}
	e.current = nil
	e.generation++
	e.retire(t, true)
}

// TweenTo starts a transition toward the given state, cancelling any prior
// in-flight transition first. Properties are partitioned into snap-now,
// interpolate, and apply-at-completion; if nothing interpolates the
// returned handle is already finished.
func (e *Engine) TweenTo(state *State, opts TweenOptions) *Handle {
	e.CancelActive()
	e.generation++

	var durPtr *float64
	if opts.OverrideDuration {
		durPtr = &opts.Duration
	}
	var easePtr *Ease
	if opts.OverrideEase {
		easePtr = &opts.Ease
	}
	baseDuration := e.resolver.EffectiveDuration(durPtr)
	groupCurves, globalCurves := e.resolver.curveSets()

	props := e.propsBuf[:0]
	deferred := e.deferredBuf[:0]
	snapped := 0

	for i := range state.Properties {
		a := &state.Properties[i]
		b, err := e.binding(a)
		if err != nil {
			logf("%v", err)
			continue
		}

		// Active flag: front-load activation so the node is live before
		// anything animates on it; back-load deactivation so it stays live
		// through its own exit animation.
		if b.Kind == AccessorActiveFlag {
			if a.Value >= activeThreshold {
				_ = b.SetValue(1)
				snapped++
			} else {
				deferred = append(deferred, b)
			}
			continue
		}

		if b.Kind == AccessorObject {
			e.applyObject(b, a)
			snapped++
			continue
		}

		info := e.store.Info(e.resolver, a, e.preview)
		duration := baseDuration
		if info.Instant {
			duration = 0
		}
		if duration*info.multiplier() == 0 || !b.CanWrite() || !b.CanRead() {
			if err := b.SetValue(a.Value); err != nil {
				logf("snap %s.%s: %v", a.Path, a.Property, err)
			}
			snapped++
			continue
		}

		start, err := b.Value()
		if err != nil {
			logf("read %s.%s: %v", a.Path, a.Property, err)
			if err := b.SetValue(a.Value); err != nil {
				logf("snap %s.%s: %v", a.Path, a.Property, err)
			}
			snapped++
			continue
		}

		kind := info.Ease
		if !info.EaseForced {
			kind = e.resolver.EffectiveEase(easePtr)
		}
		props = append(props, tweenProp{
			binding:    b,
			start:      start,
			target:     a.Value,
			curve:      curveFor(kind, groupCurves, globalCurves),
			startPause: info.StartPause,
			multiplier: info.multiplier(),
		})
	}

	debugLogTransition(state.Name, snapped, len(props), len(deferred))

	t := &transition{
		gen:      e.generation,
		handle:   newHandle(),
		ctx:      opts.Context,
		props:    props,
		deferred: deferred,
	}
	if len(props) == 0 {
		e.retire(t, false)
		return t.handle
	}

	// The transition window stretches to cover the longest custom-timing
	// multiplier; pauses extend wall time rather than eating into the eased
	// segment.
	maxMult := 1.0
	for i := range props {
		if props[i].multiplier > maxMult {
			maxMult = props[i].multiplier
		}
	}
	t.duration = baseDuration * maxMult
	e.current = t
	return t.handle
}

// Step advances the in-flight transition by dt seconds of host time. Hosts
// call this once per tick; it is a no-op while idle. The cancellation check
// runs before any writes.
func (e *Engine) Step(dt float64) {
	t := e.current
	if t == nil {
		return
	}
	if t.gen != e.generation || e.root.IsDisposed() ||
		(t.ctx != nil && t.ctx.Err() != nil) {
		e.current = nil
		e.retire(t, true)
		return
	}

	t.elapsed += dt
	progress := clamp01(t.elapsed / t.duration)
	if progress >= 1 {
		// Force exact final values so floating-point accumulation cannot
		// undershoot the target.
		for i := range t.props {
			p := &t.props[i]
			if p.failed {
				continue
			}
			if err := p.binding.SetValue(p.target); err != nil {
				logf("finalize write: %v", err)
			}
		}
		e.current = nil
		e.retire(t, false)
		return
	}

	for i := range t.props {
		p := &t.props[i]
		if p.failed {
			continue
		}
		curveTime := timingRemap(progress, p.startPause, p.multiplier)
		eased := p.curve.Evaluate(curveTime)
		if err := p.binding.SetValue(lerpUnclamped(p.start, p.target, eased)); err != nil {
			// One property failing must not take the others down with it.
			logf("step write: %v", err)
			p.failed = true
		}
	}
}

// retire runs a transition's deferred deactivations, completes its handle,
// and reclaims its buffers. Deferred deactivations run on cancellation too:
// a superseded exit transition must still leave its nodes disabled.
func (e *Engine) retire(t *transition, cancelled bool) {
	for _, b := range t.deferred {
		_ = b.SetValue(0)
	}
	t.handle.finish(cancelled)
	e.propsBuf = t.props[:0]
	e.deferredBuf = t.deferred[:0]
}

// timingRemap maps shared transition progress to one property's curve time
// through its pause phases: flat at 0 through the start pause, linear
// through the eased segment, flat at 1 through the end pause.
func timingRemap(progress, startPause, multiplier float64) float64 {
	if multiplier <= 1 {
		return progress
	}
	scaled := progress * multiplier
	switch {
	case scaled < startPause:
		return 0
	case scaled < startPause+1:
		return scaled - startPause
	default:
		return 1
	}
}
