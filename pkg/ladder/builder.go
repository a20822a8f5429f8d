package ladder

import "github.com/sirupsen/logrus"

// Cond is the condition a branch instruction tests after the compare.
type Cond int

const (
	Less Cond = iota
	Greater
)

func (c Cond) Mnemonic() string {
	if c == Less {
		return "jl"
	}
	return "jg"
}

func (c Cond) String() string {
	return c.Mnemonic()
}

// Direction is the search direction suffix of a numeric local label.
type Direction byte

const (
	Forward  Direction = 'f'
	Backward Direction = 'b'
)

// unresolved marks a branch whose target identifier is not known yet.
const unresolved = -1

// Branch is a conditional jump to a child node. It is created holding only
// the pivot value of its target; Resolve fills in Target and Dir.
type Branch struct {
	Cond        Cond
	TargetPivot int
	Target      int
	Dir         Direction
}

// Ref is a resolved local label reference.
type Ref struct {
	Target int
	Dir    Direction
}

// Node is one compare block of the ladder. ID is the node's pre-order
// position, which is also its position in the emitted instruction stream.
type Node struct {
	ID       int
	Pivot    int
	Interval Interval
	Depth    int
	Less     *Branch
	Greater  *Branch
}

// Branches returns the node's branches in emission order.
func (n *Node) Branches() []*Branch {
	brs := make([]*Branch, 0, 2)
	if n.Less != nil {
		brs = append(brs, n.Less)
	}
	if n.Greater != nil {
		brs = append(brs, n.Greater)
	}
	return brs
}

func (n *Node) IsLeaf() bool {
	return n.Less == nil && n.Greater == nil
}

// Program is the state of one generation run: the nodes in emission order
// and the pivot → identifier index. Nothing in it is shared across runs.
type Program struct {
	Domain Domain
	Nodes  []*Node
	Exit   Ref

	index map[int]int
	stage Stage
	log   logrus.FieldLogger
}

func newProgram(d Domain, log logrus.FieldLogger) *Program {
	return &Program{
		Domain: d,
		Nodes:  make([]*Node, 0, d.Size()),
		Exit:   Ref{Target: unresolved},
		index:  make(map[int]int),
		stage:  StageDeferred,
		log:    log,
	}
}

// NodeForPivot returns the node that compares against pivot.
func (p *Program) NodeForPivot(pivot int) (*Node, bool) {
	id, ok := p.index[pivot]
	if !ok {
		return nil, false
	}
	return p.Nodes[id], true
}

// PivotIndex returns a copy of the pivot → identifier mapping.
func (p *Program) PivotIndex() map[int]int {
	out := make(map[int]int, len(p.index))
	for k, v := range p.index {
		out[k] = v
	}
	return out
}

func (p *Program) Stage() Stage {
	return p.stage
}

type builder struct {
	prog *Program
	next int
	err  error
}

// build emits the node for iv's midpoint and recurses left then right.
// Empty or out-of-domain intervals are pruned without error; that is how
// the recursion bottoms out.
func (b *builder) build(iv Interval, bounds Domain, depth int) {
	if b.err != nil {
		return
	}
	if iv.High < bounds.Min || iv.Low > bounds.Max || iv.Low > iv.High {
		return
	}

	n := &Node{
		ID:       b.next,
		Pivot:    iv.Pivot(),
		Interval: iv,
		Depth:    depth,
	}
	if left := iv.Left(); !left.Empty() {
		n.Less = &Branch{Cond: Less, TargetPivot: left.Pivot(), Target: unresolved}
	}
	if right := iv.Right(); !right.Empty() {
		n.Greater = &Branch{Cond: Greater, TargetPivot: right.Pivot(), Target: unresolved}
	}

	if first, dup := b.prog.index[n.Pivot]; dup {
		b.err = &DuplicatePivotError{Pivot: n.Pivot, First: first, Second: n.ID}
		return
	}
	b.prog.index[n.Pivot] = n.ID
	b.prog.Nodes = append(b.prog.Nodes, n)
	b.next++

	b.build(iv.Left(), bounds, depth+1)
	b.build(iv.Right(), bounds, depth+1)
}

// Build constructs the comparison tree for d. References between nodes are
// left deferred; call Resolve before rendering final text.
func Build(d Domain) (*Program, error) {
	return buildWithLogger(d, discardLogger())
}

func buildWithLogger(d Domain, log logrus.FieldLogger) (*Program, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	b := &builder{prog: newProgram(d, log)}
	b.build(d.Interval(), d, 0)
	if b.err != nil {
		return nil, b.err
	}
	log.WithFields(logrus.Fields{
		"min":   d.Min,
		"max":   d.Max,
		"nodes": len(b.prog.Nodes),
	}).Debug("comparison tree built")
	return b.prog, nil
}
