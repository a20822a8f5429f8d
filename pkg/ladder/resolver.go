package ladder

import "github.com/sirupsen/logrus"

// Stage tracks how far label resolution has progressed.
type Stage int

const (
	// StageDeferred: branches name their target by pivot value.
	StageDeferred Stage = iota
	// StageMarked: branches name their target by identifier.
	StageMarked
	// StageResolved: every branch and the exit carry a direction.
	StageResolved
)

func (s Stage) String() string {
	switch s {
	case StageDeferred:
		return "deferred"
	case StageMarked:
		return "marked"
	case StageResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// ParseStage is the inverse of Stage.String.
func ParseStage(s string) (Stage, bool) {
	for _, st := range []Stage{StageDeferred, StageMarked, StageResolved} {
		if st.String() == s {
			return st, true
		}
	}
	return 0, false
}

// Resolve turns every deferred reference into a directional local label
// reference and points the exit jump past the last node.
func (p *Program) Resolve() error {
	return p.ResolveTo(StageResolved)
}

// ResolveTo advances resolution up to and including stage. Stages already
// reached are not repeated.
func (p *Program) ResolveTo(stage Stage) error {
	if p.stage < StageMarked && stage >= StageMarked {
		if err := p.resolvePivots(); err != nil {
			return err
		}
	}
	if p.stage < StageResolved && stage >= StageResolved {
		p.resolveDirections()
	}
	return nil
}

// resolvePivots maps each branch's target pivot to the identifier of the
// node that owns it. Each branch names exactly one pivot, so the order
// nodes are visited in does not matter.
func (p *Program) resolvePivots() error {
	var missing []Reference
	for _, n := range p.Nodes {
		for _, br := range n.Branches() {
			id, ok := p.index[br.TargetPivot]
			if !ok {
				missing = append(missing, Reference{Origin: n.ID, Cond: br.Cond, Pivot: br.TargetPivot})
				continue
			}
			br.Target = id
		}
	}
	if len(missing) > 0 {
		return &UnresolvedReferenceError{Refs: missing}
	}
	p.stage = StageMarked
	p.log.WithField("nodes", len(p.Nodes)).Debug("pivot references mapped to node identifiers")
	return nil
}

// resolveDirections picks f or b for every branch relative to the node it
// is emitted from. The same target can be forward from one origin and
// backward from another.
func (p *Program) resolveDirections() {
	var fwd, back int
	for _, n := range p.Nodes {
		for _, br := range n.Branches() {
			br.Dir = direction(n.ID, br.Target)
			if br.Dir == Forward {
				fwd++
			} else {
				back++
			}
		}
	}
	p.Exit = Ref{Target: len(p.Nodes), Dir: Forward}
	p.stage = StageResolved
	p.log.WithFields(logrus.Fields{
		"forward":  fwd,
		"backward": back,
		"exit":     p.Exit.Target,
	}).Debug("local label directions resolved")
}

func direction(origin, target int) Direction {
	if target < origin {
		return Backward
	}
	return Forward
}
