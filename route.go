package clearflow

import "reflect"

// routeKey identifies an edge in the route table: "from this node, upon
// producing this message type, go to...". Declared as a struct rather
// than a map composite key only for readability; route lookup remains a
// linear scan (see routeTable.find) so diagnostics stay deterministic
// and the first-registered match always wins, matching the reference
// implementation's linear route resolution.
type routeKey struct {
	fromNode string
	msgType  reflect.Type
}

// routeEntry is one row of the route table. to is nil for a terminal
// route: the flow ends when fromNode produces msgType.
type routeEntry struct {
	key routeKey
	to  Node
}

// routeTable is an ordered, append-only list of routeEntry. Builders
// never mutate a routeTable in place; every addition copies the
// underlying slice so a previously returned *FlowBuilder keeps working.
type routeTable []routeEntry

func (rt routeTable) find(fromNode string, msgType reflect.Type) (routeEntry, bool) {
	for _, e := range rt {
		if e.key.fromNode == fromNode && e.key.msgType == msgType {
			return e, true
		}
	}
	return routeEntry{}, false
}

func (rt routeTable) hasKey(fromNode string, msgType reflect.Type) bool {
	_, ok := rt.find(fromNode, msgType)
	return ok
}

// hasTerminal reports whether rt already contains a terminal entry
// (to == nil) anywhere, regardless of which node or message type it was
// registered for. A route table has at most one.
func (rt routeTable) hasTerminal() bool {
	for _, e := range rt {
		if e.to == nil {
			return true
		}
	}
	return false
}

// withEntry returns a new routeTable with entry appended, leaving rt
// untouched.
func (rt routeTable) withEntry(entry routeEntry) routeTable {
	next := make(routeTable, len(rt), len(rt)+1)
	copy(next, rt)
	return append(next, entry)
}
