package comptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternBuiltinIsStable(t *testing.T) {
	r := NewTypeRegistry(8)
	a := r.InternBuiltin(BuiltinI32)
	b := r.InternBuiltin(BuiltinI32)
	require.Same(t, a, b)
	require.EqualValues(t, 4, a.Size())
	require.EqualValues(t, 4, a.Align())
}

func TestInternPointerUsesConfiguredWidth(t *testing.T) {
	r32 := NewTypeRegistry(4)
	r64 := NewTypeRegistry(8)
	require.EqualValues(t, 4, r32.InternPointer().Size())
	require.EqualValues(t, 8, r64.InternPointer().Size())
}

func TestInternArrayComputesSize(t *testing.T) {
	r := NewTypeRegistry(8)
	i16 := r.InternBuiltin(BuiltinI16)
	arr := r.InternArray(i16, 5)
	require.EqualValues(t, 10, arr.Size())
	require.EqualValues(t, 2, arr.Align())
	require.Same(t, arr, r.InternArray(i16, 5))
}

func TestInternAggregatePacksWithAlignment(t *testing.T) {
	r := NewTypeRegistry(8)
	i8 := r.InternBuiltin(BuiltinI8)
	i32 := r.InternBuiltin(BuiltinI32)

	// {i8, i32} needs padding before the i32 member.
	agg := r.InternAggregate([]*Type{i8, i32})
	require.Equal(t, []uint32{0, 4}, agg.Offsets())
	require.EqualValues(t, 8, agg.Size())
	require.EqualValues(t, 4, agg.Align())

	// Structurally identical member lists intern to the same Type.
	require.Same(t, agg, r.InternAggregate([]*Type{i8, i32}))
}

func TestMemberAtOffsetBinarySearch(t *testing.T) {
	r := NewTypeRegistry(8)
	i8 := r.InternBuiltin(BuiltinI8)
	i32 := r.InternBuiltin(BuiltinI32)
	i64 := r.InternBuiltin(BuiltinI64)
	agg := r.InternAggregate([]*Type{i8, i32, i64})

	member, off, ok := agg.memberAtOffset(5)
	require.True(t, ok)
	require.Same(t, i32, member)
	require.EqualValues(t, 4, off)

	member, off, ok = agg.memberAtOffset(8)
	require.True(t, ok)
	require.Same(t, i64, member)
	require.EqualValues(t, 8, off)
}
