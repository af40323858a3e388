package stateful

import (
	"reflect"
	"strings"
)

// nodeIDCounter is a plain counter (no atomic — stateful is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the object-graph element that property assignments address.
// A node has a name (used for slash-delimited path lookup), an Active flag
// (the ActiveProperty pseudo-property), and any number of attached
// components: pointers to arbitrary Go structs whose exported fields the
// accessor compiler reads and writes.
type Node struct {
	// Identity
	ID   uint32
	Name string

	// Hierarchy
	Parent   *Node
	children []*Node

	// Active is the node-level enabled flag. Transitions front-load turning
	// it on and back-load turning it off; Snap applies it immediately.
	Active bool

	// Metadata
	UserData any

	components []any

	disposed bool
}

// NewNode creates a node with the given name, active by default.
func NewNode(name string) *Node {
	return &Node{ID: nextNodeID(), Name: name, Active: true}
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("stateful: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("stateful: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	if globalDebug {
		debugCheckTreeDepth(child)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if child.Parent != n {
		panic("stateful: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// --- Components ---

// Attach adds a component to the node. Components must be pointers to
// structs; the accessor compiler needs addressable fields to write through.
// Panics on non-pointer components so the mistake surfaces at attach time
// rather than as a resolution failure later.
func (n *Node) Attach(component any) {
	if component == nil {
		panic("stateful: cannot attach nil component")
	}
	if reflect.TypeOf(component).Kind() != reflect.Pointer {
		panic("stateful: components must be pointers to structs")
	}
	n.components = append(n.components, component)
}

// Detach removes the first component with the same dynamic type as component.
// Reports whether anything was removed. Bindings already compiled against the
// detached instance keep writing to it; clear the binding cache afterwards.
func (n *Node) Detach(component any) bool {
	want := reflect.TypeOf(component)
	for i, c := range n.components {
		if reflect.TypeOf(c) == want {
			copy(n.components[i:], n.components[i+1:])
			n.components[len(n.components)-1] = nil
			n.components = n.components[:len(n.components)-1]
			return true
		}
	}
	return false
}

// Component returns the first attached component whose dynamic type equals
// typ, or nil. typ must be the pointer type of the component struct.
func (n *Node) Component(typ reflect.Type) any {
	for _, c := range n.components {
		if reflect.TypeOf(c) == typ {
			return c
		}
	}
	return nil
}

// Components returns the attached component list. MUST NOT be mutated.
func (n *Node) Components() []any {
	return n.components
}

// --- Path lookup ---

// Find resolves a slash-delimited path of child names relative to this node.
// The empty path resolves to the node itself. Returns nil if any path element
// has no matching child; the first child with a matching name wins.
func (n *Node) Find(path string) *Node {
	if path == "" {
		return n
	}
	current := n
	for _, part := range strings.Split(path, "/") {
		var next *Node
		for _, child := range current.children {
			if child.Name == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// Path returns the slash-delimited path of this node relative to its root
// (the root's own name excluded), matching the addressing used by property
// assignments and rule wildcards.
func (n *Node) Path() string {
	if n.Parent == nil {
		return ""
	}
	parts := []string{n.Name}
	for p := n.Parent; p != nil && p.Parent != nil; p = p.Parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants. In-flight transitions targeting a
// disposed graph stop writing on their next step.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	n.components = nil
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}
