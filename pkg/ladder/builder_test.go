package ladder

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalPivot(t *testing.T) {
	tests := []struct {
		iv   Interval
		want int
	}{
		{Interval{0, 255}, 127},
		{Interval{0, 3}, 1},
		{Interval{2, 3}, 2},
		{Interval{3, 3}, 3},
		{Interval{-3, 0}, -2},
		{Interval{-1, 0}, -1},
		{Interval{-5, -5}, -5},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.iv.Pivot(), "pivot of %+v", tc.iv)
	}
}

func TestBuildFourValues(t *testing.T) {
	prog, err := Build(Domain{Min: 0, Max: 3})
	require.NoError(t, err)
	require.Len(t, prog.Nodes, 4)

	assert.Equal(t, map[int]int{1: 0, 0: 1, 2: 2, 3: 3}, prog.PivotIndex())

	root := prog.Nodes[0]
	require.NotNil(t, root.Less)
	require.NotNil(t, root.Greater)
	assert.Equal(t, 0, root.Less.TargetPivot)
	assert.Equal(t, 2, root.Greater.TargetPivot)

	assert.True(t, prog.Nodes[1].IsLeaf())

	n2 := prog.Nodes[2]
	assert.Nil(t, n2.Less, "[2,3] has no values below its pivot")
	require.NotNil(t, n2.Greater)
	assert.Equal(t, 3, n2.Greater.TargetPivot)

	assert.True(t, prog.Nodes[3].IsLeaf())
}

func TestBuildSingleValue(t *testing.T) {
	prog, err := Build(Domain{Min: 0, Max: 0})
	require.NoError(t, err)
	require.Len(t, prog.Nodes, 1)
	assert.True(t, prog.Nodes[0].IsLeaf())
	assert.Equal(t, 0, prog.Nodes[0].Pivot)
}

func TestBuildRejectsInvertedDomain(t *testing.T) {
	_, err := Build(Domain{Min: 5, Max: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDomain))

	_, err = Build(Domain{Min: 0, Max: MaxDomainSize})
	assert.True(t, errors.Is(err, ErrInvalidDomain))
	assert.NoError(t, Domain{Min: 0, Max: MaxDomainSize - 1}.Validate())
	assert.True(t, errors.Is(Domain{Min: math.MinInt, Max: math.MaxInt}.Validate(), ErrInvalidDomain))
}

func TestBuildPrunesOutOfDomainIntervals(t *testing.T) {
	bounds := Domain{Min: 10, Max: 20}
	tests := []Interval{
		{Low: 0, High: 9},   // entirely below
		{Low: 21, High: 30}, // entirely above
		{Low: 15, High: 14}, // empty
	}
	for _, iv := range tests {
		b := &builder{prog: newProgram(bounds, discardLogger())}
		b.build(iv, bounds, 0)
		assert.NoError(t, b.err)
		assert.Empty(t, b.prog.Nodes, "interval %+v", iv)
	}
}

func TestBuildDetectsDuplicatePivot(t *testing.T) {
	d := Domain{Min: 0, Max: 3}
	b := &builder{prog: newProgram(d, discardLogger())}
	b.prog.index[2] = 42

	b.build(d.Interval(), d, 0)

	require.Error(t, b.err)
	assert.True(t, errors.Is(b.err, ErrDuplicatePivot))
	var dup *DuplicatePivotError
	require.True(t, errors.As(b.err, &dup))
	assert.Equal(t, 2, dup.Pivot)
	assert.Equal(t, 42, dup.First)
}

func TestBuildNegativeDomain(t *testing.T) {
	prog, err := Build(Domain{Min: -3, Max: 0})
	require.NoError(t, err)
	require.Len(t, prog.Nodes, 4)
	assert.Equal(t, -2, prog.Nodes[0].Pivot)
	assert.Equal(t, -3, prog.Nodes[1].Pivot)
	assert.Equal(t, -1, prog.Nodes[2].Pivot)
	assert.Equal(t, 0, prog.Nodes[3].Pivot)
}

func TestBuildByteDomainDepth(t *testing.T) {
	prog, err := Build(DefaultDomain)
	require.NoError(t, err)
	assert.Len(t, prog.Nodes, 256)
	assert.Equal(t, 127, prog.Nodes[0].Pivot)
	assert.Equal(t, 8, prog.Stats().MaxDepth)
}

func TestIntervalChildrenAtIntLimits(t *testing.T) {
	top := Interval{Low: math.MaxInt, High: math.MaxInt}
	assert.Equal(t, math.MaxInt, top.Pivot())
	assert.True(t, top.Left().Empty())
	assert.True(t, top.Right().Empty())

	bottom := Interval{Low: math.MinInt, High: math.MinInt + 1}
	assert.Equal(t, math.MinInt, bottom.Pivot())
	assert.True(t, bottom.Left().Empty())
	assert.Equal(t, Interval{Low: math.MinInt + 1, High: math.MinInt + 1}, bottom.Right())
}

func TestBuildAtIntLimits(t *testing.T) {
	for _, d := range []Domain{
		{Min: math.MaxInt - 3, Max: math.MaxInt},
		{Min: math.MinInt, Max: math.MinInt + 3},
	} {
		res, err := Generate(Options{Domain: d, Found: "X"})
		require.NoError(t, err, "domain %+v", d)

		prog := res.Program
		require.Len(t, prog.Nodes, 4, "domain %+v", d)
		assert.Equal(t, d.Min+1, prog.Nodes[0].Pivot)
		assert.Equal(t, 2, prog.Stats().MaxDepth)
		for v := d.Min; ; v++ {
			tr := prog.Trace(v)
			assert.True(t, tr.Matched, "value %d", v)
			assert.Equal(t, v, prog.Nodes[tr.Final()].Pivot)
			if v == d.Max {
				break
			}
		}
	}
}
