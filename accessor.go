package stateful

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
)

// AccessorKind tags what a Binding can do.
type AccessorKind uint8

const (
	AccessorNumeric    AccessorKind = iota // float getter/setter over a numeric or bool member
	AccessorObject                         // setter assigning an externally-loaded reference
	AccessorActiveFlag                     // node Active flag as 0/1
)

// getterFunc reads a member of a component as a float. setterFunc writes
// one. objectSetterFunc assigns a reference value. All operate on the
// component instance they were compiled for the type of.
type (
	getterFunc       func(component any) (float64, error)
	setterFunc       func(component any, value float64) error
	objectSetterFunc func(component any, ref any) error
)

// Binding is a resolved, cached accessor for one (path, component,
// property) triple on a live graph. A binding may be missing a half when
// compilation partially failed; callers must check CanRead/CanWrite before
// tweening through it.
type Binding struct {
	Kind AccessorKind

	node      *Node // active-flag bindings write here
	component any   // numeric/object bindings write here

	get    getterFunc
	set    setterFunc
	setObj objectSetterFunc
}

// CanRead reports whether the binding has a usable getter.
func (b *Binding) CanRead() bool {
	return b.Kind == AccessorActiveFlag || b.get != nil
}

// CanWrite reports whether the binding has a usable setter for its kind.
func (b *Binding) CanWrite() bool {
	switch b.Kind {
	case AccessorActiveFlag:
		return true
	case AccessorObject:
		return b.setObj != nil
	}
	return b.set != nil
}

// Value reads the bound member as a float (bools read as 0/1).
func (b *Binding) Value() (float64, error) {
	if b.Kind == AccessorActiveFlag {
		if b.node.Active {
			return 1, nil
		}
		return 0, nil
	}
	if b.get == nil {
		return 0, fmt.Errorf("stateful: binding has no getter")
	}
	return b.get(b.component)
}

// SetValue writes a float to the bound member (bools switch at the 0.5
// threshold). Active-flag bindings are settable this way for snapping only;
// the engine never tweens them.
func (b *Binding) SetValue(v float64) error {
	if b.Kind == AccessorActiveFlag {
		b.node.Active = v >= activeThreshold
		return nil
	}
	if b.set == nil {
		return fmt.Errorf("stateful: binding has no setter")
	}
	return b.set(b.component, v)
}

// SetObject assigns an external reference to the bound member.
func (b *Binding) SetObject(ref any) error {
	if b.setObj == nil {
		return fmt.Errorf("stateful: binding has no object setter")
	}
	return b.setObj(b.component, ref)
}

// --- Process-wide compiled delegate cache ---

type delegateKey struct {
	typ    reflect.Type
	member string
	kind   uint8 // 0 getter, 1 setter, 2 object setter
}

// delegateCache shares compiled getter/setter closures across all bindings
// for the same component type and member, so two nodes carrying the same
// component reuse the same compiled code. Guarded for multi-threaded hosts;
// re-compiling the same key is idempotent either way.
var delegateCache = struct {
	sync.RWMutex
	m map[delegateKey]any
}{m: make(map[delegateKey]any)}

func cachedDelegate(key delegateKey, compile func() (any, error)) (any, error) {
	delegateCache.RLock()
	d, ok := delegateCache.m[key]
	delegateCache.RUnlock()
	if ok {
		return d, nil
	}
	d, err := compile()
	if err != nil {
		return nil, err
	}
	delegateCache.Lock()
	// Another goroutine may have raced us; keep the first entry so delegate
	// identity stays stable.
	if prev, ok := delegateCache.m[key]; ok {
		d = prev
	} else {
		delegateCache.m[key] = d
	}
	delegateCache.Unlock()
	return d, nil
}

// ClearDelegateCache drops every compiled accessor delegate. Only needed
// when re-registering component types with different shapes (tests, hot
// code reload).
func ClearDelegateCache() {
	delegateCache.Lock()
	delegateCache.m = make(map[delegateKey]any)
	delegateCache.Unlock()
}

// --- Resolution ---

// Resolve compiles a binding for one property assignment against the graph
// rooted at root. Resolution is cached by the caller (the engine keys its
// binding cache by the assignment triple); Resolve itself only caches the
// compiled delegates, which are shared per (type, member).
//
// Any step that fails returns a descriptive error; the engine logs it and
// skips the property rather than failing the transition.
func Resolve(root *Node, a *PropertyAssignment) (*Binding, error) {
	node := root.Find(a.Path)
	if node == nil {
		return nil, fmt.Errorf("stateful: node %q not found", a.Path)
	}

	// Active-flag sentinel: addresses the node itself, no component needed.
	if a.Property == ActiveProperty && (a.Component == "" || a.Component == NodeComponent) {
		return &Binding{Kind: AccessorActiveFlag, node: node}, nil
	}

	typ, err := lookupComponentType(a.Component)
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, fmt.Errorf("stateful: property %q on node %q needs a component type", a.Property, a.Path)
	}
	component := node.Component(typ)
	if component == nil {
		return nil, fmt.Errorf("stateful: node %q has no %s component", a.Path, a.Component)
	}

	if a.ObjectRef != "" {
		d, err := cachedDelegate(delegateKey{typ, a.Property, 2}, func() (any, error) {
			return compileObjectSetter(typ, a.Property)
		})
		if err != nil {
			return nil, err
		}
		return &Binding{Kind: AccessorObject, component: component, setObj: d.(objectSetterFunc)}, nil
	}

	b := &Binding{Kind: AccessorNumeric, component: component}
	if d, err := cachedDelegate(delegateKey{typ, a.Property, 0}, func() (any, error) {
		return compileGetter(typ, a.Property)
	}); err == nil {
		b.get = d.(getterFunc)
	} else {
		logf("compile getter %s.%s: %v", a.Component, a.Property, err)
	}
	if d, err := cachedDelegate(delegateKey{typ, a.Property, 1}, func() (any, error) {
		return compileSetter(typ, a.Property)
	}); err == nil {
		b.set = d.(setterFunc)
	} else {
		logf("compile setter %s.%s: %v", a.Component, a.Property, err)
	}
	if b.get == nil && b.set == nil {
		return nil, fmt.Errorf("stateful: no accessor compiled for %s.%s", a.Component, a.Property)
	}
	return b, nil
}

// memberPath locates a property name on a pointer-to-struct type, handling
// one level of dot nesting. It returns the outer field index, the inner
// field index within the outer member's struct (or -1), and whether the
// outer member is a pointer (mutated in place rather than copied back).
func memberPath(typ reflect.Type, member string) (outer, inner int, outerPtr bool, err error) {
	elem := typ.Elem()
	outerName, innerName, nested := strings.Cut(member, ".")
	of, ok := elem.FieldByName(outerName)
	if !ok || len(of.Index) != 1 {
		return 0, 0, false, fmt.Errorf("stateful: %s has no field %q", elem, outerName)
	}
	if !of.IsExported() {
		return 0, 0, false, fmt.Errorf("stateful: field %s.%s is not exported", elem, outerName)
	}
	outer = of.Index[0]
	inner = -1
	if !nested {
		return outer, inner, false, nil
	}
	ot := of.Type
	if ot.Kind() == reflect.Pointer {
		outerPtr = true
		ot = ot.Elem()
	}
	if ot.Kind() != reflect.Struct {
		return 0, 0, false, fmt.Errorf("stateful: field %s.%s is not a struct, cannot resolve %q", elem, outerName, innerName)
	}
	inf, ok := ot.FieldByName(innerName)
	if !ok || len(inf.Index) != 1 {
		return 0, 0, false, fmt.Errorf("stateful: %s has no field %q", ot, innerName)
	}
	if !inf.IsExported() {
		return 0, 0, false, fmt.Errorf("stateful: field %s.%s is not exported", ot, innerName)
	}
	return outer, inf.Index[0], outerPtr, nil
}

// compileGetter builds a float getter closure for typ's member.
func compileGetter(typ reflect.Type, member string) (any, error) {
	outer, inner, outerPtr, err := memberPath(typ, member)
	if err != nil {
		return nil, err
	}
	// Verify the leaf is numeric up front so the closure cannot fail on kind.
	if err := checkNumericLeaf(typ, outer, inner, outerPtr, member); err != nil {
		return nil, err
	}
	g := getterFunc(func(component any) (float64, error) {
		v := reflect.ValueOf(component).Elem().Field(outer)
		if inner >= 0 {
			if outerPtr {
				if v.IsNil() {
					return 0, fmt.Errorf("stateful: nil %s while reading %q", v.Type(), member)
				}
				v = v.Elem()
			}
			v = v.Field(inner)
		}
		return numericValue(v)
	})
	return g, nil
}

// compileSetter builds a float setter closure for typ's member. When the
// outer member of a nested property is a value type, the setter reads the
// whole outer value, mutates the copy, and writes it back — value
// semantics, required for correctness, not an implementation shortcut.
func compileSetter(typ reflect.Type, member string) (any, error) {
	outer, inner, outerPtr, err := memberPath(typ, member)
	if err != nil {
		return nil, err
	}
	if err := checkNumericLeaf(typ, outer, inner, outerPtr, member); err != nil {
		return nil, err
	}
	s := setterFunc(func(component any, value float64) error {
		f := reflect.ValueOf(component).Elem().Field(outer)
		if inner < 0 {
			return setNumeric(f, value, member)
		}
		if outerPtr {
			if f.IsNil() {
				return fmt.Errorf("stateful: nil %s while writing %q", f.Type(), member)
			}
			return setNumeric(f.Elem().Field(inner), value, member)
		}
		whole := reflect.New(f.Type()).Elem()
		whole.Set(f)
		if err := setNumeric(whole.Field(inner), value, member); err != nil {
			return err
		}
		f.Set(whole)
		return nil
	})
	return s, nil
}

// compileObjectSetter builds a reference-assignment closure for typ's
// member. Nested object references are not supported; the original data
// format never produces them.
func compileObjectSetter(typ reflect.Type, member string) (any, error) {
	if strings.Contains(member, ".") {
		return nil, fmt.Errorf("stateful: object reference member %q cannot be nested", member)
	}
	outer, _, _, err := memberPath(typ, member)
	if err != nil {
		return nil, err
	}
	ft := typ.Elem().Field(outer).Type
	s := objectSetterFunc(func(component any, ref any) error {
		f := reflect.ValueOf(component).Elem().Field(outer)
		if ref == nil {
			f.Set(reflect.Zero(ft))
			return nil
		}
		rv := reflect.ValueOf(ref)
		if !rv.Type().AssignableTo(ft) {
			return fmt.Errorf("stateful: cannot assign %s to %s field %q", rv.Type(), ft, member)
		}
		f.Set(rv)
		return nil
	})
	return s, nil
}

// checkNumericLeaf verifies at compile time that the addressed member is a
// float, integer, or bool.
func checkNumericLeaf(typ reflect.Type, outer, inner int, outerPtr bool, member string) error {
	ft := typ.Elem().Field(outer).Type
	if inner >= 0 {
		if outerPtr {
			ft = ft.Elem()
		}
		ft = ft.Field(inner).Type
	}
	switch ft.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	}
	return fmt.Errorf("stateful: member %q has non-numeric type %s", member, ft)
}

// numericValue converts a reflected member to float64. Bools map to 0/1.
func numericValue(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Bool:
		if v.Bool() {
			return 1, nil
		}
		return 0, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	}
	return 0, fmt.Errorf("stateful: cannot read %s as a number", v.Type())
}

// setNumeric writes a float to a reflected member, converting through the
// member's underlying representation. Bools switch at the 0.5 threshold.
func setNumeric(v reflect.Value, value float64, member string) error {
	if !v.CanSet() {
		return fmt.Errorf("stateful: member %q is not settable", member)
	}
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		v.SetFloat(value)
	case reflect.Bool:
		v.SetBool(value >= activeThreshold)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(math.Round(value)))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if value < 0 {
			value = 0
		}
		v.SetUint(uint64(math.Round(value)))
	default:
		return fmt.Errorf("stateful: cannot write a number to %s member %q", v.Type(), member)
	}
	return nil
}
