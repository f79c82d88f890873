package engine

import (
	"fmt"
	"strings"
)

// Category names a plugin family an engine may expose for
// introspection.
type Category uint8

const (
	// Branching rules pick the variable to branch on.
	Branching Category = iota
	// Conflict handlers learn from infeasible subproblems.
	Conflict
	// Display columns drive the engine's progress output.
	Display
	// Heuristics search for feasible assignments.
	Heuristic
	// Presolvers reduce the model before the solve.
	Presolver
	// Propagators tighten domains between nodes.
	Propagator
	// Selectors pick the next open node.
	Selector
	// Separators generate cutting planes.
	Separator
)

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{
		Branching, Conflict, Display, Heuristic,
		Presolver, Propagator, Selector, Separator,
	}
}

func (c Category) String() string {
	switch c {
	case Branching:
		return "branching"
	case Conflict:
		return "conflict"
	case Display:
		return "display"
	case Heuristic:
		return "heuristic"
	case Presolver:
		return "presolver"
	case Propagator:
		return "propagator"
	case Selector:
		return "selector"
	case Separator:
		return "separator"
	}
	return "unknown"
}

// ParseCategory maps a case-insensitive category name to its Category.
func ParseCategory(s string) (Category, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown plugin category %q", s)
}
