package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildDiamond builds the canonical small lattice used across these tests:
//
//	          Top
//	         /    \
//	      Left    Right
//	         \    /
//	        Bottom (liveable, concrete)
func buildDiamond(t *testing.T) (r *Registry, top, left, right *Layout, bottom *ConcreteLayout) {
	t.Helper()
	r = NewRegistry()
	r.Debug = true

	top, err := NewTop(r)
	require.NoError(t, err)

	leftBlock, err := r.ReserveIndices(1)
	require.NoError(t, err)
	left, err = NewLayout(r, leftBlock.Base(), "Left", false, top)
	require.NoError(t, err)

	rightBlock, err := r.ReserveIndices(1)
	require.NoError(t, err)
	right, err = NewLayout(r, rightBlock.Base(), "Right", false, top)
	require.NoError(t, err)

	bottomBlock, err := r.ReserveIndices(1)
	require.NoError(t, err)
	bottom, err = NewConcreteLayout(r, bottomBlock.Base(), "Bottom", true, Functions{
		GetInt:            func(ArrayData, int64) (any, bool) { return nil, false },
		GetStr:            func(ArrayData, string) (any, bool) { return nil, false },
		SetInt:            func(ad ArrayData, key int64, v any) ArrayData { return ad },
		SetStr:            func(ad ArrayData, key string, v any) ArrayData { return ad },
		Append:            func(ad ArrayData, v any) ArrayData { return ad },
		EscalateToVanilla: func(ad ArrayData, reason string) ArrayData { return ad },
	}, nil, left, right)
	require.NoError(t, err)

	require.NoError(t, FinalizeHierarchy(r))
	return r, top, left, right, bottom
}

func TestRegistrationInvariants(t *testing.T) {
	t.Run("only one root per registry", func(t *testing.T) {
		r := NewRegistry()
		_, err := NewTop(r)
		require.NoError(t, err)
		_, err = NewTop(r)
		require.Error(t, err)
	})

	t.Run("non-root requires at least one parent", func(t *testing.T) {
		r := NewRegistry()
		_, err := NewTop(r)
		require.NoError(t, err)
		block, err := r.ReserveIndices(1)
		require.NoError(t, err)
		_, err = NewLayout(r, block.Base(), "Orphan", false)
		require.ErrorIs(t, err, ErrNoParents)
	})

	t.Run("duplicate description rejected", func(t *testing.T) {
		r := NewRegistry()
		top, err := NewTop(r)
		require.NoError(t, err)
		b1, err := r.ReserveIndices(1)
		require.NoError(t, err)
		_, err = NewLayout(r, b1.Base(), "Dup", false, top)
		require.NoError(t, err)
		b2, err := r.ReserveIndices(1)
		require.NoError(t, err)
		_, err = NewLayout(r, b2.Base(), "Dup", false, top)
		require.ErrorIs(t, err, ErrDuplicateDescription)
	})

	t.Run("rejects a non-immediate parent", func(t *testing.T) {
		r := NewRegistry()
		top, err := NewTop(r)
		require.NoError(t, err)
		b1, err := r.ReserveIndices(1)
		require.NoError(t, err)
		mid, err := NewLayout(r, b1.Base(), "Mid", false, top)
		require.NoError(t, err)
		b2, err := r.ReserveIndices(1)
		require.NoError(t, err)
		// Top is an ancestor of Mid, so supplying both as parents is redundant.
		_, err = NewLayout(r, b2.Base(), "Bad", false, top, mid)
		require.ErrorIs(t, err, ErrParentNotImmediate)
	})

	t.Run("rejects two liveable parents of one non-liveable child", func(t *testing.T) {
		r := NewRegistry()
		top, err := NewTop(r)
		require.NoError(t, err)

		b1, err := r.ReserveIndices(1)
		require.NoError(t, err)
		c1, err := NewConcreteLayout(r, b1.Base(), "C1", true, Functions{}, nil, top)
		require.NoError(t, err)

		b2, err := r.ReserveIndices(1)
		require.NoError(t, err)
		c2, err := NewConcreteLayout(r, b2.Base(), "C2", true, Functions{}, nil, top)
		require.NoError(t, err)

		b3, err := r.ReserveIndices(1)
		require.NoError(t, err)
		_, err = NewLayout(r, b3.Base(), "Ambiguous", false, c1.Layout, c2.Layout)
		require.ErrorIs(t, err, ErrAmbiguousLiveable)
	})

	t.Run("reserve rejects non-power-of-two block sizes", func(t *testing.T) {
		r := NewRegistry()
		_, err := r.ReserveIndices(3)
		require.ErrorIs(t, err, ErrBadBlockSize)
	})

	t.Run("index blocks are aligned to their own size", func(t *testing.T) {
		r := NewRegistry()
		_, err := NewTop(r) // consumes index 0
		require.NoError(t, err)
		block, err := r.ReserveIndices(4)
		require.NoError(t, err)
		require.Zero(t, uint32(block.Base())%uint32(block.Size()))
	})

	t.Run("registration after finalize is rejected", func(t *testing.T) {
		r, top, _, _, _ := buildDiamond(t)
		_, err := r.ReserveIndices(1)
		require.ErrorIs(t, err, ErrAlreadyFinalized)
		_, err = NewLayout(r, 999, "TooLate", false, top)
		require.ErrorIs(t, err, ErrAlreadyFinalized)
	})
}

func TestLatticeOrder(t *testing.T) {
	r, top, left, right, bottom := buildDiamond(t)

	t.Run("reflexive", func(t *testing.T) {
		ok, err := LessEqual(r, left, left)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("transitive chain to top", func(t *testing.T) {
		ok, err := LessEqual(r, bottom.Layout, top)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("antisymmetric: unrelated nodes are not <= each other", func(t *testing.T) {
		leOk, err := LessEqual(r, left, right)
		require.NoError(t, err)
		reOk, err := LessEqual(r, right, left)
		require.NoError(t, err)
		require.False(t, leOk)
		require.False(t, reOk)
	})

	t.Run("pre-finalization guard", func(t *testing.T) {
		fresh := NewRegistry()
		top, err := NewTop(fresh)
		require.NoError(t, err)

		ok, err := LessEqual(fresh, top, top)
		require.NoError(t, err)
		require.True(t, ok)

		block, err := fresh.ReserveIndices(1)
		require.NoError(t, err)
		other, err := NewLayout(fresh, block.Base(), "Other", false, top)
		require.NoError(t, err)

		_, err = LessEqual(fresh, other, top)
		require.ErrorIs(t, err, ErrNotFinalized)

		_, err = Join(fresh, other, top)
		require.ErrorIs(t, err, ErrNotFinalized)

		_, err = Meet(fresh, other, top)
		require.ErrorIs(t, err, ErrNotFinalized)

		j, err := Join(fresh, top, top)
		require.NoError(t, err)
		require.Equal(t, top, j)

		m, err := Meet(fresh, top, top)
		require.NoError(t, err)
		require.Equal(t, top, m)
	})
}

func TestJoinAndMeet(t *testing.T) {
	r, top, left, right, bottom := buildDiamond(t)

	t.Run("join of left and right is top", func(t *testing.T) {
		j, err := Join(r, left, right)
		require.NoError(t, err)
		require.Equal(t, top, j)
	})

	t.Run("join of a node with itself is itself", func(t *testing.T) {
		j, err := Join(r, left, left)
		require.NoError(t, err)
		require.Equal(t, left, j)
	})

	t.Run("meet of left and right is bottom", func(t *testing.T) {
		m, err := Meet(r, left, right)
		require.NoError(t, err)
		require.Equal(t, bottom.Layout, m)
	})

	t.Run("meet of top and bottom is bottom", func(t *testing.T) {
		m, err := Meet(r, top, bottom.Layout)
		require.NoError(t, err)
		require.Equal(t, bottom.Layout, m)
	})
}

func TestLeastLiveableAncestor(t *testing.T) {
	r, _, left, _, bottom := buildDiamond(t)

	t.Run("liveable node is its own least liveable ancestor", func(t *testing.T) {
		lla, err := LeastLiveableAncestor(r, bottom.Layout)
		require.NoError(t, err)
		require.Equal(t, bottom.Layout, lla)
	})

	t.Run("non-liveable node with no liveable ancestor returns nil", func(t *testing.T) {
		lla, err := LeastLiveableAncestor(r, left)
		require.NoError(t, err)
		require.Nil(t, lla)
	})

	t.Run("before finalization returns Top", func(t *testing.T) {
		fresh := NewRegistry()
		top, err := NewTop(fresh)
		require.NoError(t, err)
		lla, err := LeastLiveableAncestor(fresh, top)
		require.NoError(t, err)
		require.Equal(t, top, lla)
	})
}

// TestAbstractLiveableParents builds A and B as liveable-but-abstract
// children of Top (no vtable of their own, just general enough to guard a
// live translation) and a concrete, non-liveable C beneath them, exercising
// the case NewLayout/NewConcreteLayout's liveable parameter exists for: a
// layout's concreteness and liveability are independent bits.
func TestAbstractLiveableParents(t *testing.T) {
	r := NewRegistry()
	r.Debug = true
	top, err := NewTop(r)
	require.NoError(t, err)

	ab, err := r.ReserveIndices(1)
	require.NoError(t, err)
	a, err := NewLayout(r, ab.Base(), "A", true, top)
	require.NoError(t, err)

	bb, err := r.ReserveIndices(1)
	require.NoError(t, err)
	b, err := NewLayout(r, bb.Base(), "B", true, top)
	require.NoError(t, err)

	require.True(t, a.Liveable())
	require.False(t, a.Concrete())
	require.True(t, b.Liveable())
	require.False(t, b.Concrete())

	t.Run("C with both A and B as parents is ambiguous", func(t *testing.T) {
		cb, err := r.ReserveIndices(1)
		require.NoError(t, err)
		_, err = NewConcreteLayout(r, cb.Base(), "C-ambiguous", false, Functions{}, nil, a, b)
		require.ErrorIs(t, err, ErrAmbiguousLiveable)
	})

	t.Run("C with sole parent A resolves its least liveable ancestor to A", func(t *testing.T) {
		cb, err := r.ReserveIndices(1)
		require.NoError(t, err)
		c, err := NewConcreteLayout(r, cb.Base(), "C", false, Functions{}, nil, a)
		require.NoError(t, err)

		require.NoError(t, FinalizeHierarchy(r))

		ok, err := LessEqual(r, c.Layout, a)
		require.NoError(t, err)
		require.True(t, ok)

		j, err := Join(r, a, b)
		require.NoError(t, err)
		require.Equal(t, top, j)

		lla, err := LeastLiveableAncestor(r, c.Layout)
		require.NoError(t, err)
		require.Equal(t, a, lla)
	})
}

func TestDispatchMismatchPanics(t *testing.T) {
	r, _, _, _, bottom := buildDiamond(t)

	other := fakeArray{idx: bottom.Index() + 1}
	d := bottom.Dispatch(r, other)
	require.Panics(t, func() {
		d.GetInt(other, 0)
	})
}

func TestDispatchReleaseModeSkipsCheck(t *testing.T) {
	r, _, _, _, bottom := buildDiamond(t)
	r.Debug = false

	other := fakeArray{idx: bottom.Index() + 1}
	d := bottom.Dispatch(r, other)
	require.NotPanics(t, func() {
		d.GetInt(other, 0)
	})
}

type fakeArray struct {
	idx LayoutIndex
}

func (f fakeArray) LayoutIndex() LayoutIndex { return f.idx }

func TestErrorsAreWrapped(t *testing.T) {
	r := NewRegistry()
	top, err := NewTop(r)
	require.NoError(t, err)
	block, err := r.ReserveIndices(1)
	require.NoError(t, err)
	_, err = NewLayout(r, block.Base(), "Dup", false, top)
	require.NoError(t, err)
	_, err = NewLayout(r, block.Base(), "Dup", false, top)
	require.True(t, errors.Is(err, ErrDuplicateDescription) || errors.Is(err, ErrIndexInUse))
}
