// Package template implements the message template grammar: variable
// substitution with pipe-chained filters, truthy-gated conditionals and
// list loops. Compile parses the grammar into a node tree once; Evaluate
// walks the tree against a data context and is total. The compiled tree
// is immutable and safe for concurrent evaluation.
package template

// SelfToken refers to the current item inside a loop body.
const SelfToken = "."

// Node is one unit of compiled template structure.
type Node interface {
	node()
}

// Literal is a run of plain template text.
type Literal struct {
	Text string
}

// FilterCall names one filter application with its optional argument.
type FilterCall struct {
	Name string
	Arg  string
}

// Variable substitutes the value at a dotted path, passed through its
// filters left to right.
type Variable struct {
	Path    string
	Filters []FilterCall
}

// Conditional includes its body when the value at Path is truthy
// (or falsy, when Negated).
type Conditional struct {
	Path    string
	Negated bool
	Body    []Node
}

// Loop evaluates its body once per element of the list at Path.
type Loop struct {
	Path string
	Body []Node
}

func (*Literal) node()     {}
func (*Variable) node()    {}
func (*Conditional) node() {}
func (*Loop) node()        {}
