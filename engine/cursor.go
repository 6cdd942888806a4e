package engine

// CursorKind tells which state a Cursor holds.
type CursorKind uint8

// CursorKind is one of these values.
const (
	CursorNone CursorKind = iota
	CursorClauses
	CursorRange
	CursorSplit
	CursorGroups
	CursorGoal
	CursorTerms
)

func (k CursorKind) String() string {
	return [...]string{
		CursorNone:    "none",
		CursorClauses: "clauses",
		CursorRange:   "range",
		CursorSplit:   "split",
		CursorGroups:  "groups",
		CursorGoal:    "goal",
		CursorTerms:   "terms",
	}[k]
}

// Cursor is the resumable state of a nondeterministic builtin. It's held by the choice point of the builtin
// and passed back on every redo. The zero value is a fresh cursor of kind CursorNone.
type Cursor struct {
	Kind CursorKind

	// CursorClauses
	Clauses *ClauseIterator

	// CursorRange
	Next, Last Integer
	Unbounded  bool

	// CursorSplit
	Text        []rune
	Start, Size int

	// CursorGroups and CursorTerms
	Terms []Term
	Pos   int

	// CursorGoal
	Goal       *Engine
	Mark       int
	Recovering bool
	Count      int

	done bool
	keep bool
}

// Init sets the kind of a fresh cursor and reports whether it was fresh.
func (c *Cursor) Init(kind CursorKind) bool {
	if c.Kind != CursorNone {
		return false
	}
	c.Kind = kind
	return true
}

// Stop tells the engine that there are no more alternatives so that the choice point can be dropped.
func (c *Cursor) Stop() {
	c.done = true
}

// Done reports whether the cursor is exhausted.
func (c *Cursor) Done() bool {
	return c.done
}

// KeepBindings tells the engine that the bindings made by the builtin are undone by the builtin itself
// on the next redo, e.g. by a sub-engine which shares the heap.
func (c *Cursor) KeepBindings() {
	c.keep = true
}

// Term returns the next precomputed alternative or nil if there are no more.
func (c *Cursor) Term() Term {
	if c.Pos >= len(c.Terms) {
		c.Stop()
		return nil
	}
	t := c.Terms[c.Pos]
	c.Pos++
	if c.Pos >= len(c.Terms) {
		c.Stop()
	}
	return t
}

// Close releases the sub-engine held by the cursor.
func (c *Cursor) Close() {
	if c.Goal != nil {
		c.Goal.Close()
		c.Goal = nil
	}
}
