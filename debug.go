package stateful

import (
	"fmt"
	"log"
	"os"
)

// logf is the package diagnostic channel. Resolution and invocation
// failures are logged and the affected property skipped; they never fail
// the whole transition.
func logf(format string, args ...any) {
	log.Printf("stateful: "+format, args...)
}

// globalDebug mirrors the most recently set Controller debug flag so that
// node operations (which lack a Controller pointer) can check it cheaply.
// Only valid with a single Controller; multiple Controllers with differing
// debug modes will reflect whichever called SetDebugMode last.
var globalDebug bool

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth warnings are printed, and each transition logs
// its classification summary to stderr.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
}

// debugCheckDisposed panics with a descriptive message when a disposed node
// is used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("stateful debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[stateful] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, n.Name)
	}
}

// debugLogTransition prints a classification summary for a starting
// transition: how many properties snap, interpolate, and defer.
func debugLogTransition(state string, snap, interp, deferred int) {
	if !globalDebug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[stateful] tween to %q: snap: %d | interpolate: %d | deferred: %d\n",
		state, snap, interp, deferred)
}
