package stateful

import (
	"math"
	"strings"
)

// ActiveProperty is the sentinel property name addressing a node's Active
// flag instead of a member on an attached component. Assignments targeting it
// encode the flag as 0.0 (inactive) / 1.0 (active) and are applied with
// front/back-loaded timing during transitions: activation happens before the
// interpolated properties start, deactivation only once they finish.
const ActiveProperty = "active"

// NodeComponent is the component name addressing the node itself. Only the
// ActiveProperty sentinel is resolvable against it. The empty component name
// is equivalent.
const NodeComponent = "Node"

// activeThreshold converts a numeric payload to a flag: >= 0.5 means true.
const activeThreshold = 0.5

// Ease identifies a named easing curve shape.
type Ease uint8

const (
	Linear       Ease = iota // constant velocity
	InSine                   // sinusoidal accelerate
	OutSine                  // sinusoidal decelerate
	InOutSine                // sinusoidal accelerate then decelerate
	InQuad                   // quadratic accelerate
	OutQuad                  // quadratic decelerate
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InQuart
	OutQuart
	InOutQuart
	InQuint
	OutQuint
	InOutQuint
	InExpo    // exponential accelerate
	OutExpo   // exponential decelerate
	InOutExpo
	InCirc // circular accelerate (vertical tangent at the end)
	OutCirc
	InOutCirc
	InElastic // overshooting damped oscillation toward the start
	OutElastic
	InOutElastic
	InBack // pulls back past the start before moving forward
	OutBack
	InOutBack
	InBounce // decaying parabolic bounces toward the start
	OutBounce
	InOutBounce
	Flash      // hard on/off flicker, equal amplitude
	InFlash    // flicker growing toward the end
	OutFlash   // flicker decaying from the start
	InOutFlash // flicker peaking in the middle

	easeCount // number of ease kinds; keep last
)

// easeNames is indexed by Ease. Names are the wire format used in YAML
// settings and curve override documents.
var easeNames = [easeCount]string{
	"Linear",
	"InSine", "OutSine", "InOutSine",
	"InQuad", "OutQuad", "InOutQuad",
	"InCubic", "OutCubic", "InOutCubic",
	"InQuart", "OutQuart", "InOutQuart",
	"InQuint", "OutQuint", "InOutQuint",
	"InExpo", "OutExpo", "InOutExpo",
	"InCirc", "OutCirc", "InOutCirc",
	"InElastic", "OutElastic", "InOutElastic",
	"InBack", "OutBack", "InOutBack",
	"InBounce", "OutBounce", "InOutBounce",
	"Flash", "InFlash", "OutFlash", "InOutFlash",
}

// String returns the canonical name for the ease kind, or "Linear" for
// out-of-range values.
func (e Ease) String() string {
	if e >= easeCount {
		return easeNames[Linear]
	}
	return easeNames[e]
}

// ParseEase resolves a case-insensitive ease name. Unknown names report
// ok == false and fall back to Linear, mirroring curve evaluation behavior.
func ParseEase(name string) (Ease, bool) {
	for i, n := range easeNames {
		if strings.EqualFold(n, name) {
			return Ease(i), true
		}
	}
	return Linear, false
}

// clamp01 clamps t to [0, 1].
func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// lerpUnclamped interpolates between a and b without clamping f, so easing
// curves that overshoot (Back, Elastic) swing past the endpoints as intended.
func lerpUnclamped(a, b, f float64) float64 {
	return a + (b-a)*f
}

// nearlyEqual reports whether two floats are within a small absolute epsilon.
func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}
