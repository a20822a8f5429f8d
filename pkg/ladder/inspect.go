package ladder

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// Step is one compare block visited while dispatching a value.
type Step struct {
	ID     int
	Pivot  int
	Branch string // "jl", "jg" or "" when the block falls through
}

// Trace is the route a value takes through the ladder.
type Trace struct {
	Value   int
	Steps   []Step
	Matched bool
}

// Path returns the identifiers of the visited nodes.
func (t Trace) Path() []int {
	ids := make([]int, len(t.Steps))
	for i, s := range t.Steps {
		ids[i] = s.ID
	}
	return ids
}

// Final is the node whose found action runs, or -1 for an empty ladder.
func (t Trace) Final() int {
	if len(t.Steps) == 0 {
		return -1
	}
	return t.Steps[len(t.Steps)-1].ID
}

// Trace follows v through the tree the way the emitted code would run:
// jl if below the pivot and a left child exists, jg if above and a right
// child exists, otherwise fall through to the found action. Values outside
// the domain fall through at a leaf with Matched false.
func (p *Program) Trace(v int) Trace {
	t := Trace{Value: v}
	if len(p.Nodes) == 0 {
		return t
	}
	n := p.Nodes[0]
	for {
		var br *Branch
		switch {
		case v < n.Pivot:
			br = n.Less
		case v > n.Pivot:
			br = n.Greater
		}
		if br == nil {
			t.Steps = append(t.Steps, Step{ID: n.ID, Pivot: n.Pivot})
			t.Matched = v == n.Pivot
			return t
		}
		t.Steps = append(t.Steps, Step{ID: n.ID, Pivot: n.Pivot, Branch: br.Cond.Mnemonic()})
		n = p.Nodes[p.index[br.TargetPivot]]
	}
}

// Tree renders the comparison tree, one line per node.
func (p *Program) Tree() treeprint.Tree {
	tree := treeprint.New()
	if len(p.Nodes) == 0 {
		return tree
	}
	root := p.Nodes[0]
	tree.SetValue(nodeLabel(root))
	p.addChildren(tree, root)
	return tree
}

func (p *Program) addChildren(branch treeprint.Tree, n *Node) {
	for _, br := range n.Branches() {
		child := p.Nodes[p.index[br.TargetPivot]]
		if child.IsLeaf() {
			branch.AddMetaNode(br.Cond.Mnemonic(), nodeLabel(child))
			continue
		}
		sub := branch.AddMetaBranch(br.Cond.Mnemonic(), nodeLabel(child))
		p.addChildren(sub, child)
	}
}

func nodeLabel(n *Node) string {
	return fmt.Sprintf("%d: cmp $%d [%d..%d]", n.ID, n.Pivot, n.Interval.Low, n.Interval.High)
}

// Stats summarizes the shape of a ladder.
type Stats struct {
	Nodes    int
	Leaves   int
	MaxDepth int
	Forward  int
	Backward int
}

func (p *Program) Stats() Stats {
	var s Stats
	s.Nodes = len(p.Nodes)
	for _, n := range p.Nodes {
		if n.IsLeaf() {
			s.Leaves++
		}
		if n.Depth > s.MaxDepth {
			s.MaxDepth = n.Depth
		}
		for _, br := range n.Branches() {
			switch br.Dir {
			case Forward:
				s.Forward++
			case Backward:
				s.Backward++
			}
		}
	}
	return s
}
