package stateful

import (
	"fmt"
	"reflect"
	"sync"
)

// The component registry maps qualified type names (as they appear in state
// data) to live Go types. It is process-wide mutable state with no teardown:
// register component types once at startup. The lock exists for hosts that
// register or resolve from multiple goroutines; the engine itself is
// single-threaded.
var componentRegistry = struct {
	sync.RWMutex
	types map[string]reflect.Type
}{types: make(map[string]reflect.Type)}

// RegisterComponent registers T's pointer type under the given name so state
// data can address it. Pass an empty name to register under the default
// qualified name (reflect's "pkg.Type" notation). Re-registering a name
// overwrites the previous entry.
func RegisterComponent[T any](name string) string {
	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		panic(fmt.Sprintf("stateful: RegisterComponent requires a struct type, got %s", typ))
	}
	if name == "" {
		name = typ.String()
	}
	componentRegistry.Lock()
	componentRegistry.types[name] = reflect.PointerTo(typ)
	componentRegistry.Unlock()
	return name
}

// lookupComponentType resolves a registered component name to its pointer
// type. The empty name and NodeComponent address the node itself and resolve
// to nil without error; only the ActiveProperty sentinel may target those.
func lookupComponentType(name string) (reflect.Type, error) {
	if name == "" || name == NodeComponent {
		return nil, nil
	}
	componentRegistry.RLock()
	typ, ok := componentRegistry.types[name]
	componentRegistry.RUnlock()
	if !ok {
		return nil, fmt.Errorf("stateful: component type %q is not registered", name)
	}
	return typ, nil
}

// registeredComponentName returns the name a pointer type was registered
// under, or the empty string. Used for diagnostics only; linear scan is fine.
func registeredComponentName(typ reflect.Type) string {
	componentRegistry.RLock()
	defer componentRegistry.RUnlock()
	for name, t := range componentRegistry.types {
		if t == typ {
			return name
		}
	}
	return ""
}

// AssetSource resolves the object-reference names carried by property
// assignments into externally-loaded values (images, fonts, arbitrary
// handles). Hosts provide one to the Controller; AssetMap is the trivial
// implementation.
type AssetSource interface {
	Asset(name string) (any, bool)
}

// AssetMap is an AssetSource backed by a plain map.
type AssetMap map[string]any

// Asset implements AssetSource.
func (m AssetMap) Asset(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// --- Built-in components ---

// Transform is a ready-made spatial component covering the common case of
// animating position, scale, rotation, and opacity. Hosts are free to ignore
// it and register their own component types instead.
type Transform struct {
	X, Y           float64
	ScaleX, ScaleY float64
	Rotation       float64
	Alpha          float64
}

// NewTransform returns a Transform with identity scale and full opacity.
func NewTransform() *Transform {
	return &Transform{ScaleX: 1, ScaleY: 1, Alpha: 1}
}

// Color is an RGBA color with components in [0, 1]. It is a plain value
// struct so "Color.R" style nested assignments exercise the whole-value
// write-back path.
type Color struct {
	R, G, B, A float64
}

// Sprite is a ready-made visual component: a tint color (nested struct), a
// visibility flag (bool member, 0.5-threshold conversion), and an Image slot
// assignable through object-reference assignments.
type Sprite struct {
	Color   Color
	Visible bool
	Image   any
}

// NewSprite returns a Sprite with a white tint, visible, and no image.
func NewSprite() *Sprite {
	return &Sprite{Color: Color{1, 1, 1, 1}, Visible: true}
}

func init() {
	RegisterComponent[Transform]("stateful.Transform")
	RegisterComponent[Sprite]("stateful.Sprite")
}
