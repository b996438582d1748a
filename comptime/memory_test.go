package comptime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) (*MemoryManager, *TypeRegistry) {
	t.Helper()
	o := DefaultOptions()
	registry := NewTypeRegistry(o.PointerWidth)
	return NewMemoryManager(o, registry), registry
}

func TestCheckDereferenceRejectsOutOfBoundsOffset(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)
	arr := reg.InternArray(i32, 4)

	frame := mem.PushStackFrame([]*Type{arr})
	obj := frame.objects[0]
	mem.LifetimeStart(obj)

	ok, _ := mem.CheckDereference(obj.addr, i32)
	require.True(t, ok, "dereferencing the first element must succeed")

	ok, reason := mem.CheckDereference(obj.addr+PtrT(arr.Size()), i32)
	require.False(t, ok)
	require.NotEmpty(t, reason)
}

func TestCheckDereferenceRejectsUninitializedHeapBytes(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	addr, ok := mem.Malloc(i32, 1)
	require.True(t, ok)

	ok, reason := mem.CheckDereference(addr, i32)
	require.False(t, ok, "freshly malloc'd heap bytes start out uninitialized")
	require.Contains(t, reason, "initialized")
}

func TestFreeDetectsDoubleFree(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	addr, ok := mem.Malloc(i32, 1)
	require.True(t, ok)
	require.Equal(t, FreeGood, mem.Free(addr))
	require.Equal(t, FreeDoubleFree, mem.Free(addr))
}

func TestFreeRejectsInteriorPointer(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	addr, ok := mem.Malloc(i32, 4)
	require.True(t, ok)
	require.Equal(t, FreeInsideObject, mem.Free(addr+PtrT(i32.Size())))
}

func TestDoGEPAtArrayLengthProducesOnePastTheEndHandle(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)
	arr := reg.InternArray(i32, 4)

	frame := mem.PushStackFrame([]*Type{arr})
	obj := frame.objects[0]
	mem.LifetimeStart(obj)

	onePast := mem.DoGEP(obj.addr, arr, 4)
	require.Equal(t, SegMeta, mem.layout.segmentOf(onePast))

	ok, reason := mem.CheckDereference(onePast, i32)
	require.False(t, ok, "a one-past-the-end handle must never dereference")
	require.Contains(t, reason, "one-past-the-end")
}

func TestDoPointerArithmeticOnePastTheEnd(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)
	arr := reg.InternArray(i32, 4)

	frame := mem.PushStackFrame([]*Type{arr})
	obj := frame.objects[0]
	mem.LifetimeStart(obj)

	base := mem.DoGEP(obj.addr, arr, 0)
	result, status := mem.DoPointerArithmetic(base, 4, i32)
	require.Equal(t, ArithOnePastTheEnd, status)

	back, status := mem.DoPointerArithmetic(result, -1, i32)
	require.Equal(t, ArithGood, status)
	require.Equal(t, obj.addr+PtrT(3*i32.Size()), back)
}

func TestMallocMultiElementAllowsEveryElement(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	addr, ok := mem.Malloc(i32, 4)
	require.True(t, ok)

	obj := mem.heapObjects[addr]
	obj.initBits.setRange(0, obj.totalSize(), true)

	for i := uint64(0); i < 4; i++ {
		elemAddr := addr + PtrT(i*uint64(i32.Size()))
		ok, reason := mem.CheckDereference(elemAddr, i32)
		require.True(t, ok, reason)
	}

	next, status := mem.DoPointerArithmetic(addr, 1, i32)
	require.Equal(t, ArithGood, status)
	require.Equal(t, addr+PtrT(i32.Size()), next)

	onePast, status := mem.DoPointerArithmetic(addr, 4, i32)
	require.Equal(t, ArithOnePastTheEnd, status)
	ok, _ = mem.CheckDereference(onePast, i32)
	require.False(t, ok, "a one-past-the-end handle must never dereference")
}

func TestComparePointersUnrelatedAcrossObjects(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	a, _ := mem.Malloc(i32, 1)
	b, _ := mem.Malloc(i32, 1)
	require.Equal(t, CmpUnrelated, mem.ComparePointers(a, b))
	require.Equal(t, CmpEqual, mem.ComparePointers(a, a))
}

func TestCheckSliceConstructionRejectsCrossSegmentRange(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	stackFrame := mem.PushStackFrame([]*Type{i32})
	mem.LifetimeStart(stackFrame.objects[0])
	heapAddr, _ := mem.Malloc(i32, 1)

	ok, reason := mem.CheckSliceConstruction(stackFrame.objects[0].addr, heapAddr, i32)
	require.False(t, ok)
	require.NotEmpty(t, reason)
}

func TestCheckSliceConstructionAllowsFullArray(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)
	arr := reg.InternArray(i32, 4)

	frame := mem.PushStackFrame([]*Type{arr})
	obj := frame.objects[0]
	mem.LifetimeStart(obj)

	end := mem.DoGEP(obj.addr, arr, 4)
	ok, reason := mem.CheckSliceConstruction(obj.addr, end, i32)
	require.True(t, ok, reason)
}

func TestPopStackFrameInvalidatesStackAddresses(t *testing.T) {
	mem, reg := newTestMemory(t)
	i32 := reg.InternBuiltin(BuiltinI32)

	mem.PushStackFrame([]*Type{i32})
	inner := mem.PushStackFrame([]*Type{i32})
	addr := inner.objects[0].addr
	mem.LifetimeStart(inner.objects[0])

	ok, _ := mem.CheckDereference(addr, i32)
	require.True(t, ok)

	mem.PopStackFrame()
	ok, reason := mem.CheckDereference(addr, i32)
	require.False(t, ok, "dereferencing a popped frame's address must fail")
	require.NotEmpty(t, reason)
}
