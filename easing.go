package stateful

import (
	"math"
	"sync"

	"github.com/tanema/gween/ease"
)

// Keyframe is one control point of a Curve. Tangents are slopes in
// value-per-normalized-time units; weights control how far the implied
// bezier handles reach into the segment (1/3 reproduces a plain cubic
// Hermite segment).
type Keyframe struct {
	T, Value            float64
	InTan, OutTan       float64
	InWeight, OutWeight float64
}

// Curve is an ordered set of keyframes evaluated as a piecewise cubic
// spline. Standard curves span t in [0, 1] with values 0 at t=0 and 1 at
// t=1; user override curves loaded from settings follow the same contract.
type Curve struct {
	Keys []Keyframe
}

// maxTangent caps baked tangents where the closed form's derivative
// diverges (the vertical tangent of the circular eases). The cap keeps the
// keyframes representable and editable; the shape deviation is confined to
// the final percent of the segment.
const maxTangent = 100.0

// defaultWeight is the bezier handle reach that makes a weighted segment
// identical to a plain Hermite segment.
const defaultWeight = 1.0 / 3.0

// Evaluate samples the curve at t, clamped to the curve's time range.
// Segments with default weights evaluate as cubic Hermite; weighted
// segments solve the full 2D bezier.
func (c *Curve) Evaluate(t float64) float64 {
	if c == nil || len(c.Keys) == 0 {
		return clamp01(t)
	}
	keys := c.Keys
	if t <= keys[0].T {
		return keys[0].Value
	}
	last := len(keys) - 1
	if t >= keys[last].T {
		return keys[last].Value
	}
	seg := 0
	for seg < last-1 && t >= keys[seg+1].T {
		seg++
	}
	k0, k1 := &keys[seg], &keys[seg+1]
	if nearlyEqual(k0.OutWeight, defaultWeight) && nearlyEqual(k1.InWeight, defaultWeight) {
		return hermite(k0, k1, t)
	}
	return weightedBezier(k0, k1, t)
}

// hermite evaluates the cubic Hermite segment between k0 and k1 at t.
func hermite(k0, k1 *Keyframe, t float64) float64 {
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1.Value
	}
	s := (t - k0.T) / dt
	m0 := k0.OutTan * dt
	m1 := k1.InTan * dt
	s2 := s * s
	s3 := s2 * s
	return (2*s3-3*s2+1)*k0.Value + (s3-2*s2+s)*m0 + (-2*s3+3*s2)*k1.Value + (s3-s2)*m1
}

// weightedBezier evaluates a weighted segment: handle reach is scaled by the
// keyframe weights, so time no longer maps linearly onto the spline
// parameter and must be inverted numerically (Newton, bisection fallback).
func weightedBezier(k0, k1 *Keyframe, t float64) float64 {
	dt := k1.T - k0.T
	if dt <= 0 {
		return k1.Value
	}
	x0, x3 := k0.T, k1.T
	x1 := x0 + dt*k0.OutWeight
	x2 := x3 - dt*k1.InWeight
	y0, y3 := k0.Value, k1.Value
	y1 := y0 + k0.OutTan*dt*k0.OutWeight
	y2 := y3 - k1.InTan*dt*k1.InWeight

	s := (t - x0) / dt
	for i := 0; i < 8; i++ {
		diff := bezier(x0, x1, x2, x3, s) - t
		if math.Abs(diff) < 1e-9 {
			break
		}
		d := bezierDeriv(x0, x1, x2, x3, s)
		if d == 0 {
			break
		}
		s = clamp01(s - diff/d)
	}
	if math.Abs(bezier(x0, x1, x2, x3, s)-t) > 1e-6 {
		lo, hi := 0.0, 1.0
		for i := 0; i < 48; i++ {
			mid := (lo + hi) / 2
			if bezier(x0, x1, x2, x3, mid) < t {
				lo = mid
			} else {
				hi = mid
			}
		}
		s = (lo + hi) / 2
	}
	return bezier(y0, y1, y2, y3, s)
}

func bezier(p0, p1, p2, p3, s float64) float64 {
	u := 1 - s
	return u*u*u*p0 + 3*u*u*s*p1 + 3*u*s*s*p2 + s*s*s*p3
}

func bezierDeriv(p0, p1, p2, p3, s float64) float64 {
	u := 1 - s
	return 3*u*u*(p1-p0) + 6*u*s*(p2-p1) + 3*s*s*(p3-p2)
}

// --- Baked curve construction ---

func clampTangent(m float64) float64 {
	switch {
	case math.IsNaN(m):
		return 0
	case m > maxTangent:
		return maxTangent
	case m < -maxTangent:
		return -maxTangent
	}
	return m
}

// bakeAnalytic samples a closed-form ease f and its derivative df at the
// given times, producing keyframes whose tangents are the true calculus
// derivative at each sample (clamped where it diverges).
func bakeAnalytic(f, df func(float64) float64, ts ...float64) *Curve {
	keys := make([]Keyframe, len(ts))
	for i, t := range ts {
		m := clampTangent(df(t))
		keys[i] = Keyframe{
			T: t, Value: f(t),
			InTan: m, OutTan: m,
			InWeight: defaultWeight, OutWeight: defaultWeight,
		}
	}
	return &Curve{Keys: keys}
}

// mirrorCurve reflects an ease-in curve into its ease-out twin (and vice
// versa): f'(t) = 1 - f(1-t). In/out tangents and weights swap because the
// traversal direction reverses.
func mirrorCurve(c *Curve) *Curve {
	keys := make([]Keyframe, len(c.Keys))
	for i, k := range c.Keys {
		keys[len(c.Keys)-1-i] = Keyframe{
			T: 1 - k.T, Value: 1 - k.Value,
			InTan: k.OutTan, OutTan: k.InTan,
			InWeight: k.OutWeight, OutWeight: k.InWeight,
		}
	}
	return &Curve{Keys: keys}
}

// inOutCurve joins a half-scale ease-in with its mirrored ease-out:
// f(t) = in(2t)/2 for t < 1/2, 1 - in(2-2t)/2 after. Tangent values carry
// over unchanged since time and value scale together.
func inOutCurve(in *Curve) *Curve {
	out := mirrorCurve(in)
	keys := make([]Keyframe, 0, len(in.Keys)+len(out.Keys)-1)
	for _, k := range in.Keys {
		keys = append(keys, Keyframe{
			T: k.T / 2, Value: k.Value / 2,
			InTan: k.InTan, OutTan: k.OutTan,
			InWeight: k.InWeight, OutWeight: k.OutWeight,
		})
	}
	for i, k := range out.Keys {
		nk := Keyframe{
			T: 0.5 + k.T/2, Value: 0.5 + k.Value/2,
			InTan: k.InTan, OutTan: k.OutTan,
			InWeight: k.InWeight, OutWeight: k.OutWeight,
		}
		if i == 0 {
			// Merge the shared midpoint keyframe.
			keys[len(keys)-1].OutTan = nk.OutTan
			keys[len(keys)-1].OutWeight = nk.OutWeight
			continue
		}
		keys = append(keys, nk)
	}
	return &Curve{Keys: keys}
}

// zigzagCurve builds a flash-style curve: straight lines between the given
// (t, value) pairs, tangents set to the segment slopes.
func zigzagCurve(ts, vs []float64) *Curve {
	keys := make([]Keyframe, len(ts))
	for i := range ts {
		keys[i] = Keyframe{
			T: ts[i], Value: vs[i],
			InWeight: defaultWeight, OutWeight: defaultWeight,
		}
		if i > 0 {
			slope := (vs[i] - vs[i-1]) / (ts[i] - ts[i-1])
			keys[i].InTan = slope
			keys[i-1].OutTan = slope
		}
	}
	return &Curve{Keys: keys}
}

// --- Closed forms ---
//
// Each family is authored in its ease-in form with an analytic derivative;
// out and in-out variants are derived by reflection. Bounce is authored in
// its natural ease-out form.

func sineIn(t float64) float64  { return 1 - math.Cos(t*math.Pi/2) }
func sineInD(t float64) float64 { return math.Pi / 2 * math.Sin(t*math.Pi/2) }

func powIn(n float64) (func(float64) float64, func(float64) float64) {
	f := func(t float64) float64 { return math.Pow(t, n) }
	df := func(t float64) float64 { return n * math.Pow(t, n-1) }
	return f, df
}

func expoIn(t float64) float64 {
	if t == 0 {
		return 0
	}
	return math.Pow(2, 10*(t-1))
}

func expoInD(t float64) float64 {
	if t == 0 {
		return 0
	}
	return 10 * math.Ln2 * math.Pow(2, 10*(t-1))
}

func circIn(t float64) float64 { return 1 - math.Sqrt(1-t*t) }

func circInD(t float64) float64 {
	if t >= 1 {
		return math.Inf(1) // clamped by bakeAnalytic
	}
	return t / math.Sqrt(1-t*t)
}

const backOvershoot = 1.70158

func backIn(t float64) float64 {
	s := backOvershoot
	return t * t * ((s+1)*t - s)
}

func backInD(t float64) float64 {
	s := backOvershoot
	return 3*(s+1)*t*t - 2*s*t
}

const elasticPeriod = 0.3

func elasticIn(t float64) float64 {
	if t == 0 {
		return 0
	}
	if t == 1 {
		return 1
	}
	p := elasticPeriod
	return -math.Pow(2, 10*(t-1)) * math.Sin((t-1-p/4)*2*math.Pi/p)
}

func elasticInD(t float64) float64 {
	if t == 0 {
		return 0
	}
	p := elasticPeriod
	omega := 2 * math.Pi / p
	theta := (t - 1 - p/4) * omega
	amp := math.Pow(2, 10*(t-1))
	return -amp * (10*math.Ln2*math.Sin(theta) + omega*math.Cos(theta))
}

const (
	bounceStiffness = 7.5625
	bounceDivisor   = 2.75
)

func bounceOut(t float64) float64 {
	n1, d1 := bounceStiffness, bounceDivisor
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// bounceOutCurve places keyframes at each impact (value 1, discontinuous
// tangent) and at each arc's lowest point (tangent 0), with tangents from
// the parabola derivative 2*n1*(t-center) on either side.
func bounceOutCurve() *Curve {
	n1, d1 := bounceStiffness, bounceDivisor
	type arc struct{ from, center, to float64 }
	arcs := []arc{
		{0, 0, 1 / d1}, // first arc rises from 0, "center" at its start
		{1 / d1, 1.5 / d1, 2 / d1},
		{2 / d1, 2.25 / d1, 2.5 / d1},
		{2.5 / d1, 2.625 / d1, 1},
	}
	slope := func(t, center float64) float64 { return 2 * n1 * (t - center) }

	var keys []Keyframe
	push := func(t, inTan, outTan float64) {
		keys = append(keys, Keyframe{
			T: t, Value: bounceOut(t),
			InTan: inTan, OutTan: outTan,
			InWeight: defaultWeight, OutWeight: defaultWeight,
		})
	}
	push(0, 0, slope(0, 0))
	for i, a := range arcs {
		if i > 0 {
			push(a.center, 0, 0) // arc bottom
		}
		in := slope(a.to, a.center)
		out := 0.0
		if i+1 < len(arcs) {
			out = slope(a.to, arcs[i+1].center)
		}
		push(a.to, in, out) // impact
	}
	return &Curve{Keys: keys}
}

// Sample times per family. Denser toward the end where the exponential and
// circular forms change fastest, and at quarter-period spacing through the
// elastic tail.
var (
	sineSamples    = []float64{0, 1.0 / 3, 2.0 / 3, 1}
	quadSamples    = []float64{0, 1.0 / 3, 2.0 / 3, 1}
	cubicSamples   = []float64{0, 1.0 / 3, 2.0 / 3, 1}
	quartSamples   = []float64{0, 0.25, 0.5, 0.75, 1}
	quintSamples   = []float64{0, 0.2, 0.4, 0.6, 0.8, 1}
	expoSamples    = []float64{0, 0.3, 0.55, 0.75, 0.9, 1}
	circSamples    = []float64{0, 0.4, 0.7, 0.9, 0.99, 1}
	backSamples    = []float64{0, 0.25, 0.5, 0.75, 1}
	elasticSamples = []float64{0, 0.3, 0.475, 0.55, 0.625, 0.7, 0.775, 0.85, 0.925, 1}
)

// buildCurve constructs the baked default curve for one ease kind.
func buildCurve(kind Ease) *Curve {
	family := func(f, df func(float64) float64, ts []float64, variant int) *Curve {
		in := bakeAnalytic(f, df, ts...)
		switch variant {
		case 1:
			return mirrorCurve(in)
		case 2:
			return inOutCurve(in)
		}
		return in
	}
	quadF, quadD := powIn(2)
	cubicF, cubicD := powIn(3)
	quartF, quartD := powIn(4)
	quintF, quintD := powIn(5)

	switch kind {
	case Linear:
		return zigzagCurve([]float64{0, 1}, []float64{0, 1})
	case InSine, OutSine, InOutSine:
		return family(sineIn, sineInD, sineSamples, int(kind-InSine))
	case InQuad, OutQuad, InOutQuad:
		return family(quadF, quadD, quadSamples, int(kind-InQuad))
	case InCubic, OutCubic, InOutCubic:
		return family(cubicF, cubicD, cubicSamples, int(kind-InCubic))
	case InQuart, OutQuart, InOutQuart:
		return family(quartF, quartD, quartSamples, int(kind-InQuart))
	case InQuint, OutQuint, InOutQuint:
		return family(quintF, quintD, quintSamples, int(kind-InQuint))
	case InExpo, OutExpo, InOutExpo:
		return family(expoIn, expoInD, expoSamples, int(kind-InExpo))
	case InCirc, OutCirc, InOutCirc:
		return family(circIn, circInD, circSamples, int(kind-InCirc))
	case InElastic, OutElastic, InOutElastic:
		return family(elasticIn, elasticInD, elasticSamples, int(kind-InElastic))
	case InBack, OutBack, InOutBack:
		return family(backIn, backInD, backSamples, int(kind-InBack))
	case InBounce:
		return mirrorCurve(bounceOutCurve())
	case OutBounce:
		return bounceOutCurve()
	case InOutBounce:
		return inOutCurve(mirrorCurve(bounceOutCurve()))
	case Flash:
		return zigzagCurve(
			[]float64{0, 0.2, 0.4, 0.6, 0.8, 1},
			[]float64{0, 1, 0, 1, 0, 1})
	case InFlash:
		return zigzagCurve(
			[]float64{0, 0.2, 0.4, 0.6, 0.8, 1},
			[]float64{0, 0.2, 0, 0.6, 0, 1})
	case OutFlash:
		return zigzagCurve(
			[]float64{0, 0.2, 0.4, 0.6, 0.8, 1},
			[]float64{0, 1, 0.4, 1, 0.8, 1})
	case InOutFlash:
		return zigzagCurve(
			[]float64{0, 0.2, 0.4, 0.6, 0.8, 1},
			[]float64{0, 0.3, 0, 1, 0.7, 1})
	}
	return zigzagCurve([]float64{0, 1}, []float64{0, 1})
}

// bakedCache memoizes baked default curves per kind so repeated transitions
// do not rebuild them. Process-wide; guarded for multi-threaded hosts.
var bakedCache = struct {
	sync.Mutex
	curves [easeCount]*Curve
}{}

// bakedCurve returns the shared baked default curve for kind. Unknown kinds
// fall back to linear.
func bakedCurve(kind Ease) *Curve {
	if kind >= easeCount {
		kind = Linear
	}
	bakedCache.Lock()
	defer bakedCache.Unlock()
	if c := bakedCache.curves[kind]; c != nil {
		return c
	}
	c := buildCurve(kind)
	bakedCache.curves[kind] = c
	return c
}

// EvaluateEase samples the baked default curve for kind at t (clamped to
// [0, 1]). Unknown kinds evaluate as linear.
func EvaluateEase(kind Ease, t float64) float64 {
	return bakedCurve(kind).Evaluate(clamp01(t))
}

// --- Override curve sets ---

// CurveSet holds user-authored override curves indexed by ease kind. A set
// attached to global or group settings takes precedence over the baked
// defaults for the kinds it covers.
type CurveSet struct {
	curves [easeCount]*Curve
}

// NewCurveSet returns an empty override set.
func NewCurveSet() *CurveSet {
	return &CurveSet{}
}

// Set installs an override curve for kind. A nil curve clears the override.
func (s *CurveSet) Set(kind Ease, c *Curve) {
	if kind < easeCount {
		s.curves[kind] = c
	}
}

// Curve returns the override for kind, or nil when the baked default
// applies.
func (s *CurveSet) Curve(kind Ease) *Curve {
	if s == nil || kind >= easeCount {
		return nil
	}
	return s.curves[kind]
}

// curveFor resolves the curve to sample for an ease kind: the first
// override found in the given sets (group before global), else the baked
// default.
func curveFor(kind Ease, sets ...*CurveSet) *Curve {
	for _, s := range sets {
		if c := s.Curve(kind); c != nil {
			return c
		}
	}
	return bakedCurve(kind)
}

// CurveFromFunc samples a gween easing function into a Curve with the given
// number of keyframes (minimum 2), estimating tangents by central
// difference. Useful for feeding gween's easing library in as override
// curves.
func CurveFromFunc(fn ease.TweenFunc, samples int) *Curve {
	if samples < 2 {
		samples = 2
	}
	eval := func(t float64) float64 {
		return float64(fn(float32(t), 0, 1, 1))
	}
	const h = 1e-3
	keys := make([]Keyframe, samples)
	for i := range keys {
		t := float64(i) / float64(samples-1)
		var m float64
		switch i {
		case 0:
			m = (eval(h) - eval(0)) / h
		case samples - 1:
			m = (eval(1) - eval(1-h)) / h
		default:
			m = (eval(t+h) - eval(t-h)) / (2 * h)
		}
		m = clampTangent(m)
		keys[i] = Keyframe{
			T: t, Value: eval(t),
			InTan: m, OutTan: m,
			InWeight: defaultWeight, OutWeight: defaultWeight,
		}
	}
	return &Curve{Keys: keys}
}
