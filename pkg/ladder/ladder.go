// Package ladder generates binary-search dispatch ladders for the GNU
// assembler: a balanced tree of cmp/jl/jg instructions that routes a value
// in a fixed domain to the block for that exact value. Branch targets are
// numeric local labels (12f, 3b) so the fragment can be expanded any number
// of times inside a macro body.
//
// Pipeline: Domain → Build → Resolve → Render → GAS source text
package ladder

import (
	"github.com/pkg/errors"
)

// Domain is the closed interval of values the ladder dispatches on.
type Domain struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// DefaultDomain covers a single byte.
var DefaultDomain = Domain{Min: 0, Max: 255}

// MaxDomainSize bounds the number of nodes a single ladder may have. Every
// value costs one compare block, so a larger domain produces a fragment of
// many megabytes that no macro body should carry.
const MaxDomainSize = 1 << 16

// Validate rejects inverted domains and domains of more than MaxDomainSize
// values.
func (d Domain) Validate() error {
	if d.Min > d.Max {
		return errors.Wrapf(ErrInvalidDomain, "min %d is greater than max %d", d.Min, d.Max)
	}
	if span := d.Max - d.Min; span < 0 || span >= MaxDomainSize {
		return errors.Wrapf(ErrInvalidDomain, "[%d, %d] has more than %d values", d.Min, d.Max, MaxDomainSize)
	}
	return nil
}

func (d Domain) Size() int {
	return d.Max - d.Min + 1
}

func (d Domain) Interval() Interval {
	return Interval{Low: d.Min, High: d.Max}
}

func (d Domain) Contains(v int) bool {
	return v >= d.Min && v <= d.Max
}

// Interval is the inclusive sub-range a single tree node is responsible for.
type Interval struct {
	Low, High int
}

func (iv Interval) Empty() bool {
	return iv.Low > iv.High
}

// Pivot is floor((Low+High)/2); ties go to the lower half. It is computed
// from the span so intervals at the edges of int do not overflow.
func (iv Interval) Pivot() int {
	return iv.Low + floorDiv(iv.High-iv.Low, 2)
}

// empty is the canonical empty interval, used where Pivot-1 or Pivot+1
// would wrap around.
var empty = Interval{Low: 1, High: 0}

func (iv Interval) Left() Interval {
	p := iv.Pivot()
	if p == iv.Low {
		return empty
	}
	return Interval{Low: iv.Low, High: p - 1}
}

func (iv Interval) Right() Interval {
	p := iv.Pivot()
	if p == iv.High {
		return empty
	}
	return Interval{Low: p + 1, High: iv.High}
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
