// Package stateful is a state-driven property transition engine: declare
// named states of an object graph — sets of target property values — and
// snap or tween between them with per-property timing and easing.
//
// # Quick start
//
// Build a node tree, attach components, load state data, and drive the
// controller once per tick:
//
//	root := stateful.NewNode("root")
//	panel := stateful.NewNode("Panel")
//	panel.Attach(stateful.NewTransform())
//	root.AddChild(panel)
//
//	ctrl := stateful.NewController(root)
//	if err := ctrl.LoadFile("ui/states.yaml"); err != nil {
//		log.Fatal(err)
//	}
//
//	handle := ctrl.TweenToState("shown")
//	// each frame:
//	ctrl.Update(dt)
//
// # Object graph
//
// A [Node] tree is the graph that property assignments address: each
// assignment names a slash-delimited node path, a registered component
// type attached at that node, and a member on it ("X", or "Color.R" for
// one level of nesting). Register your own component structs with
// [RegisterComponent]; [Transform] and [Sprite] are ready-made.
//
// The sentinel property [ActiveProperty] addresses the node's Active flag
// itself. Transitions apply activations before anything animates and
// deactivations only after everything finishes, so a panel stays visible
// through its own fade-out.
//
// # Timing and easing
//
// Effective duration and easing resolve through configuration tiers —
// per-call options beat instance overrides beat group settings beat global
// defaults — and per-property [OverrideRule] matches (by property name,
// component, and path wildcard) can force an ease, make a property
// instant, or add pause phases around it.
//
// Easing curves are baked control-point splines ([Curve]), not closed-form
// evaluations: each of the ~30 named kinds carries a handful of keyframes
// whose tangents are the analytic derivative of the classic formula, so
// user-authored override curves ([CurveSet]) are first-class and evaluate
// through the same path. [CurveFromFunc] adapts any [gween] easing
// function into an override curve.
//
// # Concurrency model
//
// The engine is single-threaded and step-driven: all property reads and
// writes happen synchronously inside [Controller.Update]. One transition
// is in flight per root; starting another cancels the first cooperatively
// at its next step. Pass a context through [TweenOptions] for external
// cancellation — it is checked the same way, never preemptively.
//
// [gween]: https://github.com/tanema/gween
package stateful
